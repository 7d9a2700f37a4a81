package app

import (
	"regexp"

	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/strategies"
)

// StrategyType identifies a concrete fetch strategy implementation.
type StrategyType string

const (
	StrategyCurl      StrategyType = "curl"
	StrategyPost      StrategyType = "post"
	StrategyLegacyTLS StrategyType = "ssl3"
	StrategyInsecure  StrategyType = "insecure"
	StrategyNoUnzip   StrategyType = "nounzip"
	StrategyBottle    StrategyType = "bottle"
	StrategyApache    StrategyType = "apache"
	StrategyS3        StrategyType = "s3"
	StrategyLocal     StrategyType = "local"
	StrategyGit       StrategyType = "git"
	StrategySvn       StrategyType = "svn"
	StrategyHg        StrategyType = "hg"
	StrategyBzr       StrategyType = "bzr"
	StrategyCvs       StrategyType = "cvs"
	StrategyFossil    StrategyType = "fossil"
)

// symbolicTokens maps the user-facing strategy tokens to concrete types.
var symbolicTokens = map[string]StrategyType{
	"git":      StrategyGit,
	"svn":      StrategySvn,
	"hg":       StrategyHg,
	"bzr":      StrategyBzr,
	"cvs":      StrategyCvs,
	"fossil":   StrategyFossil,
	"curl":     StrategyCurl,
	"ssl3":     StrategyLegacyTLS,
	"post":     StrategyPost,
	"nounzip":  StrategyNoUnzip,
	"insecure": StrategyInsecure,
	"bottle":   StrategyBottle,
	"apache":   StrategyApache,
	"s3":       StrategyS3,
	"local":    StrategyLocal,
}

// urlPatterns is the ordered pattern table consulted when no explicit
// strategy is given. Order matters: patterns overlap, and the first match
// wins (the Apache mirror rule must run before the generic svn host
// prefix, a github .git URL before the generic .git suffix).
var urlPatterns = []struct {
	re  *regexp.Regexp
	typ StrategyType
}{
	{regexp.MustCompile(`^https?://github\.com/[^/]+/[^/]+\.git$`), StrategyGit},
	{regexp.MustCompile(`^https?://.+\.git$`), StrategyGit},
	{regexp.MustCompile(`^git://`), StrategyGit},
	{regexp.MustCompile(`^https?://www\.apache\.org/dyn/closer\.(cgi|lua)`), StrategyApache},
	{regexp.MustCompile(`^https?://([^/]+\.)?googlecode\.com/svn`), StrategySvn},
	{regexp.MustCompile(`^https?://svn\.`), StrategySvn},
	{regexp.MustCompile(`^svn://`), StrategySvn},
	{regexp.MustCompile(`^svn\+http://`), StrategySvn},
	{regexp.MustCompile(`^cvs://`), StrategyCvs},
	{regexp.MustCompile(`^hg://`), StrategyHg},
	{regexp.MustCompile(`^https?://([^/]+\.)?googlecode\.com/hg`), StrategyHg},
	{regexp.MustCompile(`^bzr://`), StrategyBzr},
	{regexp.MustCompile(`^fossil://`), StrategyFossil},
}

// DetectStrategy resolves the strategy type for a URL. A non-empty
// explicit token takes precedence over URL pattern matching; an
// unrecognized token is a configuration error. URLs matching no pattern
// default to the plain HTTP download strategy.
func DetectStrategy(url, explicit string) (StrategyType, error) {
	if explicit != "" {
		if typ, ok := symbolicTokens[explicit]; ok {
			return typ, nil
		}
		return "", domain.NewConfigurationError("unknown download strategy %q", explicit)
	}

	for _, entry := range urlPatterns {
		if entry.re.MatchString(url) {
			return entry.typ, nil
		}
	}
	return StrategyCurl, nil
}

// CreateStrategy constructs the concrete strategy for a resolved type.
func CreateStrategy(typ StrategyType, deps *strategies.Dependencies, res *domain.Resource) (strategies.Strategy, error) {
	switch typ {
	case StrategyCurl:
		return strategies.NewHTTPStrategy(deps, res), nil
	case StrategyPost:
		return strategies.NewPostStrategy(deps, res), nil
	case StrategyLegacyTLS:
		return strategies.NewLegacyTLSStrategy(deps, res), nil
	case StrategyInsecure:
		return strategies.NewInsecureStrategy(deps, res), nil
	case StrategyNoUnzip:
		return strategies.NewNoUnzipStrategy(deps, res), nil
	case StrategyBottle:
		return strategies.NewBottleStrategy(deps, res), nil
	case StrategyApache:
		return strategies.NewApacheMirrorStrategy(deps, res), nil
	case StrategyS3:
		return strategies.NewS3Strategy(deps, res), nil
	case StrategyLocal:
		return strategies.NewLocalFileStrategy(deps, res), nil
	case StrategyGit:
		return strategies.NewGitStrategy(deps, res), nil
	case StrategySvn:
		return strategies.NewSvnStrategy(deps, res), nil
	case StrategyHg:
		return strategies.NewHgStrategy(deps, res), nil
	case StrategyBzr:
		return strategies.NewBzrStrategy(deps, res), nil
	case StrategyCvs:
		return strategies.NewCvsStrategy(deps, res), nil
	case StrategyFossil:
		return strategies.NewFossilStrategy(deps, res), nil
	default:
		return nil, domain.NewConfigurationError("unknown download strategy %q", string(typ))
	}
}
