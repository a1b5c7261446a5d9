package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultClientID is the well-known public Azure CLI app ID. It
	// supports the device code flow without a client secret or an app
	// registration of its own.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultTenantID works for personal and multi-tenant accounts.
	DefaultTenantID = "common"

	requestTimeout = 10 * time.Second
)

// GraphSource reads upcoming events from the Microsoft Graph calendarView
// endpoint. It satisfies Source; any failure is reported as an error and
// callers treat it as "no meeting".
type GraphSource struct {
	cfg       *oauth2.Config
	tokenPath string
	logger    *log.Logger

	// Window is how far ahead to look for events.
	Window time.Duration
}

func NewGraphSource(clientID, tenantID, tokenPath string, logger *log.Logger) *GraphSource {
	base := "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0"
	return &GraphSource{
		cfg: &oauth2.Config{
			ClientID: clientID,
			Scopes:   []string{"Calendars.Read", "offline_access"},
			Endpoint: oauth2.Endpoint{
				AuthURL:       base + "/authorize",
				TokenURL:      base + "/token",
				DeviceAuthURL: base + "/devicecode",
			},
		},
		tokenPath: tokenPath,
		logger:    logger,
		Window:    time.Hour,
	}
}

// DefaultTokenPath returns ~/.config/nudge/msgraph_token.json.
func DefaultTokenPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "nudge", "msgraph_token.json"), nil
}

// Login runs the OAuth2 device code flow and stores the resulting token.
// The verification instructions are printed through promptOut.
func (g *GraphSource) Login(ctx context.Context, promptOut io.Writer) error {
	da, err := g.cfg.DeviceAuth(ctx)
	if err != nil {
		return fmt.Errorf("device auth request: %w", err)
	}
	fmt.Fprintf(promptOut, "Visit %s and enter code %s\n", da.VerificationURI, da.UserCode)

	tok, err := g.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return fmt.Errorf("waiting for device token: %w", err)
	}
	return g.saveToken(tok)
}

// UpcomingBusyBlock fetches events in [now, now+Window], merges them, and
// returns the first block that has not ended, or nil when the calendar is
// clear.
func (g *GraphSource) UpcomingBusyBlock(ctx context.Context) (*BusyBlock, error) {
	tok, err := g.loadToken()
	if err != nil {
		return nil, fmt.Errorf("no calendar credentials: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	now := time.Now()
	events, err := g.fetchEvents(ctx, tok, now, now.Add(g.Window))
	if err != nil {
		return nil, err
	}
	return UpcomingBlock(events, now), nil
}

// graphEvent is the subset of the Graph event payload we decode.
type graphEvent struct {
	Subject     string `json:"subject"`
	IsAllDay    bool   `json:"isAllDay"`
	IsCancelled bool   `json:"isCancelled"`
	ShowAs      string `json:"showAs"`
	Start       struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
}

type calendarViewResponse struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

func (g *GraphSource) fetchEvents(ctx context.Context, tok *oauth2.Token, from, to time.Time) ([]Event, error) {
	client := oauth2.NewClient(ctx, &savingTokenSource{src: g.cfg.TokenSource(ctx, tok), save: g.saveToken})

	endpoint := fmt.Sprintf("%s/me/calendarView?startDateTime=%s&endDateTime=%s&$top=100",
		graphBaseURL,
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)),
	)

	var events []Event
	for endpoint != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calendar request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading calendar response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("calendar API error %d: %s", resp.StatusCode, body)
		}

		var page calendarViewResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding calendar response: %w", err)
		}

		for _, ev := range page.Value {
			if ev.IsCancelled || ev.IsAllDay || ev.ShowAs == "free" {
				continue
			}
			start, err := parseGraphTime(ev.Start.DateTime)
			if err != nil {
				g.logger.Warn("skipping event with bad start time", "subject", ev.Subject, "err", err)
				continue
			}
			end, err := parseGraphTime(ev.End.DateTime)
			if err != nil {
				g.logger.Warn("skipping event with bad end time", "subject", ev.Subject, "err", err)
				continue
			}
			title := ev.Subject
			if title == "" {
				title = "Untitled"
			}
			events = append(events, Event{Title: title, Start: start, End: end})
		}
		endpoint = page.NextLink
	}
	return events, nil
}

// parseGraphTime parses a Graph dateTime. Graph omits the zone suffix and
// returns seven fractional digits, e.g. "2026-02-27T09:00:00.0000000".
func parseGraphTime(dt string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, dt); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// savingTokenSource persists refreshed tokens so the device flow is a
// one-time setup.
type savingTokenSource struct {
	src  oauth2.TokenSource
	save func(*oauth2.Token) error
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	_ = s.save(tok)
	return tok, nil
}

func (g *GraphSource) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(g.tokenPath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}
	return &tok, nil
}

func (g *GraphSource) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(g.tokenPath), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(g.tokenPath, data, 0o600)
}
