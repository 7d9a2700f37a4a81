package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JdotSiv/homebrew/internal/config"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/strategies"
	"github.com/JdotSiv/homebrew/internal/utils"
)

// TestDetectStrategy tests strategy detection based on URL patterns
func TestDetectStrategy(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected StrategyType
	}{
		// Git
		{"github .git", "https://github.com/owner/repo.git", StrategyGit},
		{"generic .git suffix", "https://code.example.org/project.git", StrategyGit},
		{"git scheme", "git://git.example.org/project", StrategyGit},

		// Apache mirror closer (must win over plain HTTP)
		{"apache closer.cgi", "https://www.apache.org/dyn/closer.cgi?path=/httpd/httpd-2.4.tar.gz", StrategyApache},
		{"apache closer.lua", "https://www.apache.org/dyn/closer.lua/kafka/kafka.tgz", StrategyApache},

		// Subversion
		{"googlecode svn", "https://project.googlecode.com/svn/trunk", StrategySvn},
		{"svn host prefix", "https://svn.example.org/repos/project", StrategySvn},
		{"svn scheme", "svn://example.org/project", StrategySvn},
		{"svn+http scheme", "svn+http://example.org/project", StrategySvn},

		// Other version control schemes
		{"cvs scheme", "cvs://:pserver:anon@cvs.example.org:/cvsroot/project", StrategyCvs},
		{"hg scheme", "hg://hg.example.org/project", StrategyHg},
		{"googlecode hg", "https://project.googlecode.com/hg/", StrategyHg},
		{"bzr scheme", "bzr://bzr.example.org/project", StrategyBzr},
		{"fossil scheme", "fossil://fossil.example.org/project", StrategyFossil},

		// Everything else is a plain download
		{"plain tarball", "https://example.com/foo-1.2.tar.gz", StrategyCurl},
		{"svn in path not host", "https://example.com/svn/foo.tar.gz", StrategyCurl},
		{"git in path without suffix", "https://example.com/git/foo.tar.gz", StrategyCurl},
		{"github non-git", "https://github.com/owner/repo/archive/v1.tar.gz", StrategyCurl},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectStrategy(tt.url, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestDetectStrategy_ExplicitToken verifies an explicit token always wins
// over URL pattern matching.
func TestDetectStrategy_ExplicitToken(t *testing.T) {
	tests := []struct {
		token    string
		expected StrategyType
	}{
		{"git", StrategyGit},
		{"svn", StrategySvn},
		{"hg", StrategyHg},
		{"bzr", StrategyBzr},
		{"cvs", StrategyCvs},
		{"fossil", StrategyFossil},
		{"curl", StrategyCurl},
		{"ssl3", StrategyLegacyTLS},
		{"post", StrategyPost},
		{"nounzip", StrategyNoUnzip},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			// The URL would pattern-match to git; the token must win.
			result, err := DetectStrategy("https://github.com/owner/repo.git", tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDetectStrategy_UnknownToken(t *testing.T) {
	_, err := DetectStrategy("https://example.com/foo.tar.gz", "tarball")

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "tarball")
}

func testDependencies(t *testing.T) *strategies.Dependencies {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Root = t.TempDir()
	return strategies.NewDependencies(cfg, utils.NewNopLogger())
}

// TestCreateStrategy verifies every detected type constructs a strategy
// whose name round-trips.
func TestCreateStrategy(t *testing.T) {
	deps := testDependencies(t)
	res := &domain.Resource{Name: "foo", URL: "https://example.com/foo.tar.gz", Version: "1.0"}

	types := map[StrategyType]string{
		StrategyCurl:      "curl",
		StrategyPost:      "post",
		StrategyLegacyTLS: "ssl3",
		StrategyInsecure:  "insecure",
		StrategyNoUnzip:   "nounzip",
		StrategyBottle:    "bottle",
		StrategyApache:    "apache",
		StrategyS3:        "s3",
		StrategyLocal:     "local",
		StrategyGit:       "git",
		StrategySvn:       "svn",
		StrategyHg:        "hg",
		StrategyBzr:       "bzr",
		StrategyCvs:       "cvs",
		StrategyFossil:    "fossil",
	}

	for typ, name := range types {
		t.Run(string(typ), func(t *testing.T) {
			s, err := CreateStrategy(typ, deps, res)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name())
			assert.NotEmpty(t, s.CachedLocation())
		})
	}
}

func TestCreateStrategy_UnknownType(t *testing.T) {
	deps := testDependencies(t)
	_, err := CreateStrategy(StrategyType("bogus"), deps, &domain.Resource{})

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
