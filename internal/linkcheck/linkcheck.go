package linkcheck

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind distinguishes the two target resource shapes an offering can point at.
type Kind string

const (
	// KindAny tries video first, then channel.
	KindAny     Kind = ""
	KindVideo   Kind = "video"
	KindChannel Kind = "channel"
)

// Result is the outcome of validating a target URL. Err is a user-facing,
// field-level message; Validate never touches the network.
type Result struct {
	Valid      bool
	Kind       Kind
	ResourceID string
	CleanURL   string
	Err        string
}

var allowedHosts = map[string]struct{}{
	"youtube.com":       {},
	"www.youtube.com":   {},
	"m.youtube.com":     {},
	"music.youtube.com": {},
	"youtu.be":          {},
}

var (
	videoPathPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^/embed/([A-Za-z0-9_-]{11})(?:[/?].*)?$`),
		regexp.MustCompile(`^/shorts/([A-Za-z0-9_-]{11})(?:[/?].*)?$`),
		regexp.MustCompile(`^/live/([A-Za-z0-9_-]{11})(?:[/?].*)?$`),
		regexp.MustCompile(`^/v/([A-Za-z0-9_-]{11})(?:[/?].*)?$`),
	}
	shortLinkPattern = regexp.MustCompile(`^/([A-Za-z0-9_-]{11})(?:[/?].*)?$`)
	videoIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	channelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^/(@[A-Za-z0-9._-]{3,30})/?$`),
		regexp.MustCompile(`^/channel/(UC[A-Za-z0-9_-]{22})/?$`),
		regexp.MustCompile(`^/c/([A-Za-z0-9._-]+)/?$`),
		regexp.MustCompile(`^/user/([A-Za-z0-9._-]+)/?$`),
	}
)

const (
	errRequired      = "URL is required"
	errScheme        = "URL must start with http:// or https://"
	errHost          = "URL must point at YouTube"
	errVideoFormat   = "URL must be a valid YouTube video link (youtube.com/watch?v=..., youtu.be/..., /shorts/..., /embed/... or /live/...)"
	errChannelFormat = "URL must be a valid YouTube channel link (/@handle, /channel/..., /c/... or /user/...)"
	errAnyFormat     = "URL must be a valid YouTube video or channel link"
)

// Validate normalizes and validates a user-supplied target URL. Safe to call
// repeatedly for debounced live validation.
func Validate(raw string, kind Kind) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Err: errRequired}
	}

	if !strings.Contains(trimmed, "://") {
		return Result{Err: errScheme}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Result{Err: errScheme}
	}

	host := strings.ToLower(parsed.Hostname())
	if _, ok := allowedHosts[host]; !ok {
		return Result{Err: errHost}
	}

	switch kind {
	case KindVideo:
		return validateVideo(parsed, host)
	case KindChannel:
		return validateChannel(parsed)
	default:
		if res := validateVideo(parsed, host); res.Valid {
			return res
		}
		if res := validateChannel(parsed); res.Valid {
			return res
		}
		return Result{Err: errAnyFormat}
	}
}

func validateVideo(parsed *url.URL, host string) Result {
	if host == "youtu.be" {
		if m := shortLinkPattern.FindStringSubmatch(parsed.Path); m != nil {
			return videoResult(m[1])
		}
		return Result{Err: errVideoFormat}
	}

	if parsed.Path == "/watch" {
		id := parsed.Query().Get("v")
		if videoIDPattern.MatchString(id) {
			return videoResult(id)
		}
		return Result{Err: errVideoFormat}
	}

	for _, pattern := range videoPathPatterns {
		if m := pattern.FindStringSubmatch(parsed.Path); m != nil {
			return videoResult(m[1])
		}
	}
	return Result{Err: errVideoFormat}
}

func validateChannel(parsed *url.URL) Result {
	for _, pattern := range channelPatterns {
		if m := pattern.FindStringSubmatch(parsed.Path); m != nil {
			return Result{
				Valid:      true,
				Kind:       KindChannel,
				ResourceID: m[1],
				CleanURL:   "https://www.youtube.com" + strings.TrimSuffix(parsed.Path, "/"),
			}
		}
	}
	return Result{Err: errChannelFormat}
}

func videoResult(id string) Result {
	return Result{
		Valid:      true,
		Kind:       KindVideo,
		ResourceID: id,
		CleanURL:   "https://www.youtube.com/watch?v=" + id,
	}
}
