package apperr

import (
	"fmt"
	"regexp"
	"strings"
)

// notFound matches "<noun> [name] not found" with an optional quoted or bare name.
func notFound(noun string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + noun + `\s+(?:"([^"]*)"\s+|'([^']*)'\s+|(\S+)\s+)?(?:was\s+)?not\s+found`)
}

// subject renders `noun "name"` from the first non-empty submatch, or
// "the noun" when the message carried no name.
func subject(noun string, m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return fmt.Sprintf("%s %q", noun, g)
		}
	}
	return "the " + noun
}

type suggestionRule struct {
	pattern *regexp.Regexp
	build   func(match []string) []string
}

var suggestionRules = []suggestionRule{
	{
		pattern: notFound(`(?:sub)?category`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Verify that %s is defined in the categories section of your configuration", subject("category", m)),
				"Check the category slug referenced by the product for typos",
				"Run `shopsync diff --include categories` to see pending category changes",
			}
		},
	},
	{
		pattern: notFound(`product\s*type`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Verify that %s is defined in the productTypes section", subject("product type", m)),
				"Check the productType name referenced by the product for typos",
			}
		},
	},
	{
		pattern: notFound(`channel`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Verify that %s is defined in the channels section", subject("channel", m)),
				"Channel references use the channel slug, not its name",
			}
		},
	},
	{
		pattern: notFound(`warehouse`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Verify that %s is defined in the warehouses section", subject("warehouse", m)),
			}
		},
	},
	{
		pattern: notFound(`tax\s*class`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Verify that %s is defined in the taxClasses section", subject("tax class", m)),
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)attribute\s+"([^"]*)"\s+is\s+a\s+(?:page|content)\s+attribute`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Attribute %q is defined for pages; declare a product attribute with that name or reference a different one", m[1]),
			}
		},
	},
	{
		pattern: notFound(`attribute`),
		build: func(m []string) []string {
			return []string{
				fmt.Sprintf("Verify that %s is defined in the attributes section or inline on the product type", subject("attribute", m)),
				"Run `shopsync pull` to refresh your view of the remote attributes",
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)already exists|must be unique|unique constraint`),
		build: func([]string) []string {
			return []string{
				"An entity with the same slug or name already exists remotely; check for duplicate slugs",
				"Run `shopsync pull` to inspect the remote configuration",
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)too many requests|rate limit|\b429\b`),
		build: func([]string) []string {
			return []string{
				"The instance is rate limiting requests; wait a moment and re-run the deployment",
				"Lower the chunk size in .shopsync/config to reduce request bursts",
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)permission|forbidden`),
		build: func([]string) []string {
			return []string{
				"Ensure the token has the permissions required to manage this entity",
			}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)timeout|deadline exceeded`),
		build: func([]string) []string {
			return []string{
				"The request timed out; re-run the deployment, it is safe to repeat",
			}
		},
	},
}

// Suggest derives recovery suggestions from a failure message. It returns
// nil when no rule matches.
func Suggest(message string) []string {
	for _, rule := range suggestionRules {
		if m := rule.pattern.FindStringSubmatch(message); m != nil {
			for i := range m {
				m[i] = strings.TrimSpace(m[i])
			}
			return rule.build(m)
		}
	}
	return nil
}

// DefaultSuggestions returns generic next steps for a kind
func DefaultSuggestions(kind Kind, timeout bool) []string {
	switch kind {
	case KindLocalConfig:
		return []string{
			"Check that the configuration file exists and is valid YAML",
			"Run `shopsync pull` to regenerate it from the remote instance",
		}
	case KindRemoteConfig:
		if timeout {
			return []string{
				"The instance did not answer in time; retry or raise remote_timeout in .shopsync/config",
				"Check the instance URL and your network connection",
			}
		}
		return []string{
			"Check the instance URL and your network connection",
			"Verify that your token is valid and has the required permissions",
		}
	case KindNetwork:
		return []string{
			"Check the instance URL passed with --url or SALEOR_URL",
			"Check your network connection or VPN",
			"Retry in a moment; the instance may be restarting",
		}
	case KindAuthentication:
		return []string{
			"Verify the token passed with --token or SALEOR_TOKEN",
			"Ensure the token has not expired and has the required permissions",
		}
	case KindValidation:
		return []string{
			"Fix the reported fields in your configuration file",
			"Run `shopsync diff` to preview changes before deploying",
		}
	case KindStageAggregate, KindPartialDeployment:
		return []string{
			"Fix the failed entities listed above and re-run the deployment",
			"Deployments are idempotent; entities that succeeded will not be duplicated",
		}
	default:
		return []string{
			"Re-run with --verbose for the full error",
			"If the problem persists, report it with the verbose output attached",
		}
	}
}
