package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lenish/personal-hub/internal/domain/collector"
	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/domain/syncstate"
)

// maxPages bounds one pass so a misbehaving endpoint that always returns a
// next cursor cannot spin a run forever.
const maxPages = 100

// Entry is one event delivered by a feed endpoint.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

type page struct {
	Items []Entry `json:"items"`
	Next  string  `json:"next"`
}

// ItemWriter persists normalized items. Feed events are append-only, so they
// go through the insert-only path: a redelivered page never overwrites rows
// already recorded.
type ItemWriter interface {
	InsertNew(ctx context.Context, items []*item.Item) (int, error)
}

// CursorStore reads and persists the feed's pagination bookmark.
type CursorStore interface {
	Cursor(ctx context.Context, source string) (item.Document, error)
	Update(ctx context.Context, source string, upd syncstate.Update) error
}

// Collector pulls a paginated JSON feed, resuming from the stored cursor.
type Collector struct {
	source   string
	category string
	endpoint string
	token    string
	client   *http.Client
	items    ItemWriter
	states   CursorStore
	logger   *slog.Logger
}

// New creates a feed collector for one endpoint. client may be nil.
func New(source, category, endpoint, token string, client *http.Client, items ItemWriter, states CursorStore, logger *slog.Logger) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		source:   source,
		category: category,
		endpoint: endpoint,
		token:    token,
		client:   client,
		items:    items,
		states:   states,
		logger:   logger,
	}
}

func (c *Collector) Source() string   { return c.source }
func (c *Collector) Category() string { return c.category }

// Collect pages through the feed from the stored cursor, inserting new
// events and persisting the cursor after each page so an aborted run resumes
// where it stopped.
func (c *Collector) Collect(ctx context.Context) (int, error) {
	cursor, err := c.states.Cursor(ctx, c.source)
	if err != nil {
		return 0, &collector.CollectionError{Source: c.source, Err: err}
	}
	next, _ := cursor["next"].(string)

	total := 0
	for i := 0; i < maxPages; i++ {
		pg, err := c.fetchPage(ctx, next)
		if err != nil {
			return 0, &collector.CollectionError{Source: c.source, Err: err}
		}

		if len(pg.Items) > 0 {
			count, err := c.items.InsertNew(ctx, c.normalize(pg.Items))
			if err != nil {
				return 0, &collector.CollectionError{Source: c.source, Err: err}
			}
			total += count
		}

		err = c.states.Update(ctx, c.source, syncstate.Update{
			Status: syncstate.StatusRunning,
			Cursor: item.Document{"next": pg.Next},
		})
		if err != nil {
			return 0, &collector.CollectionError{Source: c.source, Err: err}
		}

		if pg.Next == "" {
			return total, nil
		}
		next = pg.Next
	}

	c.logger.Warn("stopping after page limit, cursor saved for next run", "source", c.source, "pages", maxPages)
	return total, nil
}

func (c *Collector) fetchPage(ctx context.Context, cursor string) (*page, error) {
	endpoint := c.endpoint
	if cursor != "" {
		sep := "?"
		if u, err := url.Parse(endpoint); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		endpoint = endpoint + sep + "cursor=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed endpoint returned %d", resp.StatusCode)
	}

	var pg page
	if err := json.NewDecoder(resp.Body).Decode(&pg); err != nil {
		return nil, fmt.Errorf("decoding feed page: %w", err)
	}
	return &pg, nil
}

func (c *Collector) normalize(entries []Entry) []*item.Item {
	items := make([]*item.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, &item.Item{
			Source:    c.source,
			SourceID:  entry.ID,
			Category:  c.category,
			ItemType:  "event",
			Title:     entry.Title,
			Content:   entry.Content,
			Tags:      entry.Tags,
			SourceURL: entry.URL,
			CreatedAt: entry.CreatedAt,
		})
	}
	return items
}
