package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/course-catalog/internal/config"
	"github.com/heartmarshall/course-catalog/internal/domain"
)

type searchOptions struct {
	keyword  string
	category string
	faculty  string
	campus   string
	mode     string
	grade    string
	slots    []string
	term     string
	cursor   string
	limit    int
	pages    int
	memory   string
}

// summary is the last line printed by search.
type summary struct {
	Session    string   `json:"session"`
	Returned   int      `json:"returned"`
	Exhausted  bool     `json:"exhausted"`
	Truncated  bool     `json:"truncated"`
	Advisories []string `json:"advisories,omitempty"`
	Failures   []string `json:"failures,omitempty"`
	Cursor     string   `json:"cursor,omitempty"`
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search courses and page through the results",
		Long: `Search courses and page through the results.

Every matching course is printed as one JSON line. The last line is a summary
with the exhausted, truncated and degraded state and a cursor that resumes
the same search via --cursor.

Examples:
  catalog search --faculty Science --campus North --slot MON:3
  catalog search --keyword algebra --limit 5 --pages 2
  catalog search --mode online --memory configs/courses.sample.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, opts, so)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&so.keyword, "keyword", "k", "", "free-text keyword matched against title and instructor")
	f.StringVar(&so.category, "category", "", "department label (overrides --faculty)")
	f.StringVar(&so.faculty, "faculty", "", "faculty, expanded to its departments")
	f.StringVar(&so.campus, "campus", "", "campus name or alias")
	f.StringVar(&so.mode, "mode", "", "delivery mode: in-person or online")
	f.StringVar(&so.grade, "grade", "", "target grade")
	f.StringArrayVar(&so.slots, "slot", nil, "day:period alternative, e.g. MON:3 (repeatable)")
	f.StringVar(&so.term, "term", "", "academic term, e.g. spring or 前期")
	f.StringVar(&so.cursor, "cursor", "", "resume token printed by a previous search")
	f.IntVarP(&so.limit, "limit", "n", 0, "results per page (default from config)")
	f.IntVar(&so.pages, "pages", 1, "pages to load; 0 loads until exhausted")
	f.StringVar(&so.memory, "memory", "", "search an in-memory store seeded from this YAML file")
	return cmd
}

func runSearch(cmd *cobra.Command, opts *rootOptions, so *searchOptions) error {
	criteria, err := so.criteria()
	if err != nil {
		return err
	}

	var overrides []config.Override
	if so.memory != "" {
		overrides = append(overrides, func(c *config.Config) {
			c.Store.Backend = config.BackendMemory
			c.Store.SeedPath = so.memory
		})
	}
	cat, err := opts.openCatalog(cmd.Context(), overrides...)
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx := cmd.Context()
	session, err := cat.Search.Submit(ctx, criteria)
	if err != nil {
		return err
	}

	enc := newEncoder(cmd.OutOrStdout())
	sum := summary{Session: session.ID().String()}
	for page := 0; so.pages <= 0 || page < so.pages; page++ {
		res, err := cat.Search.LoadMore(ctx, session, so.limit)
		if err != nil {
			return err
		}
		for _, r := range res.Records {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		sum.Returned += len(res.Records)
		sum.Exhausted, sum.Truncated = res.Exhausted, res.Truncated
		sum.Advisories = sum.Advisories[:0]
		for _, a := range res.Advisories {
			sum.Advisories = append(sum.Advisories, a.Error())
		}
		for _, f := range res.Failures {
			sum.Failures = append(sum.Failures, f.Error())
		}
		if res.Exhausted {
			break
		}
	}
	if !sum.Exhausted {
		sum.Cursor = session.Cursor()
	}
	return enc.Encode(sum)
}

func (so *searchOptions) criteria() (domain.Criteria, error) {
	c := domain.Criteria{
		Keyword:        so.keyword,
		CategoryCoarse: so.faculty,
		CategoryFine:   so.category,
		Campus:         so.campus,
		Grade:          so.grade,
		Term:           so.term,
		PageSize:       so.limit,
		Cursor:         so.cursor,
	}

	mode, err := parseMode(so.mode)
	if err != nil {
		return domain.Criteria{}, err
	}
	c.DeliveryMode = mode

	for _, raw := range so.slots {
		slot, err := parseSlot(raw)
		if err != nil {
			return domain.Criteria{}, err
		}
		c.DaySlots = append(c.DaySlots, slot)
	}
	return c, c.Validate()
}

func parseMode(raw string) (domain.DeliveryMode, error) {
	mode := domain.DeliveryMode(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "-", "_"))
	if !mode.IsValid() {
		return "", fmt.Errorf("--mode %q: want in-person or online", raw)
	}
	return mode, nil
}

// parseSlot reads "MON:3", "monday:3" or "月:3".
func parseSlot(raw string) (domain.DaySlot, error) {
	day, period, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return domain.DaySlot{}, fmt.Errorf("--slot %q: want DAY:PERIOD", raw)
	}
	p, err := strconv.Atoi(strings.TrimSpace(period))
	if err != nil {
		return domain.DaySlot{}, fmt.Errorf("--slot %q: %w", raw, errors.Unwrap(err))
	}
	d, ok := domain.ParseWeekday(day)
	if !ok {
		return domain.DaySlot{}, fmt.Errorf("--slot %q: unknown day %q", raw, day)
	}
	return domain.DaySlot{Day: d, Period: p}, nil
}
