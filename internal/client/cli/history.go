package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// Done records a completed run of the given timer, as the playback engine
// would after the last interval of the last round.
func (a *App) Done(ctx context.Context, id string) error {
	t, err := a.timerService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Println("No such timer:", id)
		} else {
			log.Println(err.Error())
		}
		return err
	}

	total := 0
	for _, iv := range t.Intervals {
		total += iv.Duration
	}
	total *= t.Rounds

	now := time.Now().UTC()
	entry := &models.HistoryEntry{
		TimerID:         t.ID,
		TimerName:       t.Name,
		TotalDuration:   total,
		ElapsedDuration: total,
		Completed:       true,
		StartedAt:       now.Add(-time.Duration(total) * time.Second),
		CompletedAt:     &now,
	}

	if err := a.timerService.RecordRun(ctx, entry); err != nil {
		log.Printf("error recording run: %v", err)
		return err
	}

	fmt.Printf("Recorded run of %s (%ds)\n", t.Name, total)
	return nil
}

func (a *App) History(ctx context.Context) error {
	entries, err := a.timerService.History(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No history yet")
		return nil
	}

	for _, e := range entries {
		status := "stopped"
		if e.Completed {
			status = "completed"
		}
		fmt.Printf("%s  %-20s %s  %ds/%ds  %s\n",
			e.ID, e.TimerName, e.StartedAt.Local().Format("2006-01-02 15:04"),
			e.ElapsedDuration, e.TotalDuration, status)
	}
	return nil
}

func (a *App) DeleteHistory(ctx context.Context, id string) error {
	if err := a.timerService.DeleteRun(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Println("No such history entry:", id)
		} else {
			log.Println(err.Error())
		}
		return err
	}
	fmt.Println("Deleted", id)
	return nil
}
