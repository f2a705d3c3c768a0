// Package device summarizes a User-Agent header into the client descriptor
// recorded on audit entries.
package device

import (
	"context"
	"strings"

	"github.com/mssola/useragent"

	"voteledger/pkg/requestcontext"
)

// Info is the parsed client description.
type Info struct {
	Browser string `json:"browser,omitempty"`
	Version string `json:"version,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile,omitempty"`
	Bot     bool   `json:"bot,omitempty"`
}

// Parse extracts browser, OS and device class from a User-Agent string.
func Parse(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" {
		return Info{}
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	return Info{
		Browser: name,
		Version: version,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// String renders "Browser Version (OS)". Empty when nothing was parsed.
func (i Info) String() string {
	if i.Browser == "" && i.OS == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(i.Browser)
	if i.Version != "" {
		b.WriteString(" " + i.Version)
	}
	if i.OS != "" {
		b.WriteString(" (" + i.OS + ")")
	}
	if i.Bot {
		b.WriteString(" [bot]")
	}
	return strings.TrimSpace(b.String())
}

// Describe returns "ip; client" for the request carried by ctx.
func Describe(ctx context.Context) string {
	ip := requestcontext.ClientIP(ctx)
	client := Parse(requestcontext.UserAgent(ctx)).String()
	switch {
	case ip == "":
		return client
	case client == "":
		return ip
	default:
		return ip + "; " + client
	}
}
