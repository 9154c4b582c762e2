package message

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
)

var (
	// ErrUnknownKind is returned for envelopes outside the known set
	ErrUnknownKind = errors.New("unknown message kind")
	// ErrMalformed is returned for known kinds with missing fields
	ErrMalformed = errors.New("malformed message")
)

// Kind is the envelope tag
type Kind string

const (
	KindOpenApp         Kind = "open_app"
	KindLinkClicked     Kind = "link_clicked"
	KindHostLinkClicked Kind = "host_link_clicked"
)

// Message is one of OpenApp, LinkClicked or HostLinkClicked
type Message interface {
	Kind() Kind
	message()
}

// OpenApp asks the shell to open an app by (suffix) id
type OpenApp struct {
	AppID string `json:"appId"`
	Path  string `json:"path,omitempty"`
}

// LinkClicked asks the shell to open the app store at a path
type LinkClicked struct {
	Href string `json:"href"`
}

// HostLinkClicked asks the shell to open the app named by the first path
// segment of Href with the rest of the path
type HostLinkClicked struct {
	Href string `json:"href"`
}

func (OpenApp) Kind() Kind         { return KindOpenApp }
func (LinkClicked) Kind() Kind     { return KindLinkClicked }
func (HostLinkClicked) Kind() Kind { return KindHostLinkClicked }

func (OpenApp) message()         {}
func (LinkClicked) message()     {}
func (HostLinkClicked) message() {}

type envelope struct {
	Type Kind `json:"type"`
}

// Decode parses a raw envelope into its concrete message
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, err)
	}

	switch env.Type {
	case KindOpenApp:
		var m OpenApp
		if err := sonic.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m.AppID == "" {
			return nil, fmt.Errorf("%w: open_app without appId", ErrMalformed)
		}
		return m, nil
	case KindLinkClicked:
		var m LinkClicked
		if err := sonic.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m.Href == "" {
			return nil, fmt.Errorf("%w: link_clicked without href", ErrMalformed)
		}
		return m, nil
	case KindHostLinkClicked:
		var m HostLinkClicked
		if err := sonic.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if m.Href == "" {
			return nil, fmt.Errorf("%w: host_link_clicked without href", ErrMalformed)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}

// linkSuffix turns an href into a suffix for an app's launch path: the path
// without its leading slash, plus query and fragment.
func linkSuffix(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	suffix := strings.TrimPrefix(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		suffix += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		suffix += "#" + u.EscapedFragment()
	}
	return suffix, nil
}

// splitHostLink returns the app named by the first path segment and the
// suffix formed by the rest of the href
func splitHostLink(href string) (app, suffix string, err error) {
	rest, err := linkSuffix(href)
	if err != nil {
		return "", "", err
	}
	app = rest
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		app, suffix = rest[:i], strings.TrimPrefix(rest[i:], "/")
	}
	if app == "" {
		return "", "", fmt.Errorf("%w: no app in %q", ErrMalformed, href)
	}
	return app, suffix, nil
}
