package resume

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// contactScanLines is how many leading lines are searched for contact details
const contactScanLines = 10

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9_-]+/?`)
	digitRunRe = regexp.MustCompile(`\d{3}`)
)

// extractContact pulls name, email, phone and LinkedIn from the top of the résumé
func extractContact(lines []string) *types.Contact {
	contact := &types.Contact{}
	limit := min(len(lines), contactScanLines)

	for i := 0; i < limit; i++ {
		line := lines[i]
		if contact.Email == "" {
			contact.Email = emailRe.FindString(line)
		}
		if contact.LinkedIn == "" {
			contact.LinkedIn = linkedInRe.FindString(line)
		}
		if contact.Phone == "" {
			contact.Phone = strings.TrimSpace(phoneRe.FindString(line))
		}
	}

	first := strings.TrimSpace(strings.TrimLeft(lines[0], "# "))
	if !strings.Contains(first, "@") && !digitRunRe.MatchString(first) {
		if _, isHeader := matchHeader(first); !isHeader {
			contact.Name = first
		}
	}

	if *contact == (types.Contact{}) {
		return nil
	}
	return contact
}
