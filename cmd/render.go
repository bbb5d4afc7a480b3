package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color" //nolint:misspell

	"github.com/go-arrower/queueboard/client"
)

// renderDashboard writes the server stats and every queue with its counts.
// Queues with a selected status also list their jobs on the current page.
func renderDashboard(w io.Writer, state client.State, selected map[string]string, pagination client.Pagination) {
	bold := color.New(color.Bold).FprintfFunc()
	faint := color.New(color.Faint).FprintfFunc()
	red := color.New(color.FgRed).FprintfFunc()

	if state.Data == nil {
		faint(w, "loading\n")

		return
	}

	stats := state.Data.Stats
	bold(w, "redis %s", stats["redis_version"])
	fmt.Fprintf(w, "  memory %s of %s  fragmentation %s  clients %s connected, %s blocked\n",
		byteSize(stats["used_memory"]),
		byteSize(stats["total_system_memory"]),
		orDash(stats["mem_fragmentation_ratio"]),
		orDash(stats["connected_clients"]),
		orDash(stats["blocked_clients"]),
	)

	for _, queue := range state.Data.Queues {
		bold(w, "\n%s\n", queue.Name)

		for _, status := range client.Statuses() {
			fmt.Fprintf(w, "  %s %d", status, queue.Counts[status])
		}

		fmt.Fprintln(w)

		status, ok := selected[queue.Name]
		if !ok {
			continue
		}

		page := client.PageOf(pagination, queue.Total(status))
		faint(w, "  %s, page %d of %d\n", status, page.Current, max(page.Total, 1))

		if len(queue.Jobs) == 0 {
			faint(w, "  no jobs\n")
		}

		for _, job := range queue.Jobs {
			fmt.Fprintf(w, "  #%s  %s  attempts %d",
				job.ID,
				time.UnixMilli(job.Timestamp).UTC().Format(time.DateTime),
				job.Attempts,
			)

			if job.Delay > 0 {
				fmt.Fprintf(w, "  delay %s", time.Duration(job.Delay)*time.Millisecond)
			}

			if job.FailedReason != "" {
				red(w, "  %s", job.FailedReason)
			}

			fmt.Fprintln(w)
		}
	}
}

// byteSize formats a number of bytes as reported by redis INFO, e.g. 1.5M.
func byteSize(raw string) string {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || n <= 0 {
		return "-"
	}

	const unit = 1024

	for _, suffix := range []string{"B", "K", "M", "G", "T"} {
		if n < unit {
			return strconv.FormatFloat(n, 'f', 1, 64) + suffix
		}

		n /= unit
	}

	return strconv.FormatFloat(n, 'f', 1, 64) + "P"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
