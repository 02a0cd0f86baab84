package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

// platformHosts lists host suffixes per platform, checked in order
var platformHosts = []struct {
	platform Platform
	suffixes []string
}{
	{PlatformGreenhouse, []string{"greenhouse.io"}},
	{PlatformLever, []string{"lever.co"}},
	{PlatformWorkday, []string{"workday.com", "myworkdayjobs.com"}},
	{PlatformAshby, []string{"ashbyhq.com"}},
	{PlatformSmartRecruiters, []string{"smartrecruiters.com"}},
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	for _, p := range platformHosts {
		for _, suffix := range p.suffixes {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return p.platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	var specific []string
	switch platform {
	case PlatformGreenhouse:
		specific = []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"}
	case PlatformLever:
		specific = []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description"}
	case PlatformWorkday:
		specific = []string{"[data-automation-id='jobDescription']", ".gwt-HTML"}
	case PlatformAshby:
		specific = []string{"[class*='descriptionText']", ".ashby-job-posting-right-pane"}
	case PlatformSmartRecruiters:
		specific = []string{".job-sections", "[itemprop='description']"}
	}
	return append(specific, JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// application forms
		"form", "#application-form", ".application-form", ".apply-button-container",
		"[data-testid='application-form']",
		// EEO and legal
		".voluntary-disclosure", ".eeo-statement", ".eeo-section", ".legal-disclosure", ".self-identification",
		// share and consent widgets
		".social-share", ".share-buttons", ".cookie-consent", ".gdpr-notice",
	}

	switch platform {
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply")
	case PlatformLever:
		return append(common, ".apply-section", ".lever-application-form", ".posting-apply")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']", ".application-section")
	case PlatformAshby:
		return append(common, ".ashby-application-form-container")
	default:
		return common
	}
}
