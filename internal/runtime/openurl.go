package runtime

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
)

// OpenURLMode decides when OpenUrl actions may surface.
type OpenURLMode string

const (
	OpenURLAllow       OpenURLMode = "allow"
	OpenURLDeny        OpenURLMode = "deny"
	OpenURLInteraction OpenURLMode = "interaction"
)

// OpenURLPolicy filters OpenUrl actions. The engine never opens anything;
// an allowed action is reported as the custom event "OpenUrl:<url>".
type OpenURLPolicy struct {
	Mode OpenURLMode
	// Whitelist holds host[/path] patterns where "*" matches any run of
	// characters except "/". An empty whitelist allows every URL.
	Whitelist []string
}

// DefaultOpenURLPolicy only allows URLs opened from a pointer press.
func DefaultOpenURLPolicy() OpenURLPolicy {
	return OpenURLPolicy{Mode: OpenURLInteraction}
}

// Check returns nil if target may be opened after the event last.
func (p OpenURLPolicy) Check(target string, last *domain.Event) error {
	switch p.Mode {
	case OpenURLDeny:
		return fmt.Errorf("opening urls is denied")
	case OpenURLInteraction:
		if last == nil || (last.Kind != domain.EventPointerDown && last.Kind != domain.EventClick) {
			return fmt.Errorf("opening urls requires a pointer interaction")
		}
	}
	if len(p.Whitelist) == 0 {
		return nil
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid url %q", target)
	}
	subject := u.Host + u.Path
	for _, pattern := range p.Whitelist {
		if globMatch(pattern, subject) || globMatch(pattern, u.Host) {
			return nil
		}
	}
	return fmt.Errorf("url %q is not whitelisted", target)
}

func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, "[^/]*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
