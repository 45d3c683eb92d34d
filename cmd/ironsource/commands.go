package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	ironsource "github.com/raine/ironsource-go"
	"github.com/raine/ironsource-go/api"
	"github.com/raine/ironsource-go/monetize"
	"github.com/raine/ironsource-go/promote"
	"github.com/rs/zerolog/log"
)

type usageError string

func (e usageError) Error() string {
	return string(e)
}

type runner struct {
	is     *ironsource.IronSource
	out    io.Writer
	format string
}

func (r *runner) run(ctx context.Context, cmd string, args []string) error {
	m, p := r.is.Monetize(), r.is.Promote()

	switch cmd {
	case "apps":
		return r.printJSON(m.Apps(ctx))
	case "instances":
		appKey, err := arg(args, 0, "app key")
		if err != nil {
			return err
		}
		return r.printJSON(m.Instances(ctx, appKey))
	case "groups":
		appKey, err := arg(args, 0, "app key")
		if err != nil {
			return err
		}
		return r.printJSON(m.MediationGroups(ctx, appKey))
	case "placements":
		appKey, err := arg(args, 0, "app key")
		if err != nil {
			return err
		}
		return r.printJSON(m.Placements(ctx, appKey))
	case "report":
		start, end, err := dateRange(args)
		if err != nil {
			return err
		}
		q := monetize.MonetizationQuery{StartDate: start, EndDate: end}
		if len(args) > 2 {
			q.AppKey = args[2]
		}
		return r.printJSON(m.MonetizationData(ctx, q))
	case "uar":
		day, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		appKey, err := arg(args, 1, "app key")
		if err != nil {
			return err
		}
		rc, err := m.UserAdRevenueStream(ctx, day, appKey)
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = io.Copy(r.out, rc)
		return err
	case "stats", "skan":
		start, end, err := dateRange(args)
		if err != nil {
			return err
		}
		q := promote.ReportQuery{
			StartDate:  start,
			EndDate:    end,
			Metrics:    []promote.Metric{promote.MetricImpressions, promote.MetricSpend, promote.MetricInstalls},
			Breakdowns: []promote.Breakdown{promote.BreakdownDay, promote.BreakdownCampaign},
			Format:     api.Format(r.format),
		}
		var s *api.PageStream
		if cmd == "stats" {
			s, err = p.AdvertiserStatistics(ctx, q)
		} else {
			s, err = p.SkanReport(ctx, q)
		}
		if err != nil {
			return err
		}
		return r.drain(ctx, s)
	case "bids":
		raw, err := arg(args, 0, "campaign id")
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return usageError(fmt.Sprintf("campaign id must be a number, got %q", raw))
		}
		return r.drain(ctx, p.CampaignBids(ctx, id, 0))
	case "audiences":
		return r.printJSON(p.AudienceLists(ctx))
	case "titles":
		q := promote.TitleQuery{}
		if len(args) > 0 {
			q.SearchTerm = args[0]
		}
		return r.printJSON(p.Titles(ctx, q))
	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

// drain copies every page of s to the output and reports the error that
// ended the stream, if any.
func (r *runner) drain(ctx context.Context, s *api.PageStream) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()
	defer s.Close()

	n, err := io.Copy(r.out, s)
	log.Debug().Str("stream", s.ID).Int("pages", s.Pages()).Int64("bytes", n).Msg("stream finished")
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	return s.Wait()
}

func (r *runner) printJSON(raw json.RawMessage, err error) error {
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := r.out.Write(raw)
		return werr
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(r.out)
	return err
}

func arg(args []string, i int, name string) (string, error) {
	if len(args) <= i || args[i] == "" {
		return "", usageError("missing " + name)
	}
	return args[i], nil
}

func dateArg(args []string, i int) (time.Time, error) {
	raw, err := arg(args, i, "date")
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(api.DateLayout, raw)
	if err != nil {
		return time.Time{}, usageError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	return d, nil
}

func dateRange(args []string) (time.Time, time.Time, error) {
	start, err := dateArg(args, 0)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := dateArg(args, 1)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
