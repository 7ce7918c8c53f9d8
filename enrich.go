package forceoauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var errNoHostLabel = errors.New("no host label")

// enrich derives PartnerURL and Instance. A missing partner URL is fatal;
// a failure to derive the instance is logged and leaves Instance empty.
func (c *Client) enrich(ctx context.Context, info *UserInfo) error {
	partnerURL, err := resolvePartnerURL(info.URLs)
	if err != nil {
		return err
	}
	info.PartnerURL = partnerURL

	if strings.TrimSpace(partnerURL) == "" {
		return nil
	}

	instance, err := parseInstance(partnerURL)
	if err != nil {
		c.logger.Error("Failed to parse instance name from partner URL",
			"partner_url", partnerURL,
			"error", err)
		c.metrics.RecordInstanceParseFailure(ctx)
		return nil
	}
	info.Instance = instance
	return nil
}

// resolvePartnerURL returns the partner URL template with every
// VersionPlaceholder replaced by APIVersion.
func resolvePartnerURL(urls map[string]string) (string, error) {
	template, ok := urls[PartnerURLKey]
	if !ok {
		return "", &ConfigurationError{URLs: urls}
	}
	return strings.ReplaceAll(template, VersionPlaceholder, APIVersion), nil
}

// parseInstance returns the first non-empty dot-separated label of partnerURL
// after an optional https:// prefix. A value without any dot is returned whole.
//
//	parseInstance("https://na42.salesforce.com/services/Soap/u/43.0") // "na42"
//	parseInstance("weird-no-scheme")                                  // "weird-no-scheme"
func parseInstance(partnerURL string) (string, error) {
	host := strings.TrimPrefix(partnerURL, httpsPrefix)
	for _, label := range strings.Split(host, ".") {
		if label != "" {
			return label, nil
		}
	}
	return "", fmt.Errorf("%w in %q", errNoHostLabel, partnerURL)
}
