package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/intervals/internal/client/client"
	"github.com/dmitrijs2005/intervals/internal/models"
)

// Add builds a timer interactively: name, rounds, then intervals until an
// empty interval name is entered.
func (a *App) Add(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "Timer name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	rounds, err := GetInt(a.reader, "Rounds", 1, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var intervals []models.Interval
	for {
		iname, err := GetSimpleText(a.reader, "Interval name (empty to finish)", os.Stdout)
		if err != nil {
			return err
		}
		if iname == "" {
			break
		}
		duration, err := GetInt(a.reader, "Duration (seconds)", 30, os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		color, err := GetSimpleText(a.reader, "Color (empty for default)", os.Stdout)
		if err != nil {
			return err
		}
		intervals = append(intervals, models.Interval{Name: iname, Duration: duration, Color: color})
	}

	timer := &models.Timer{Name: name, Rounds: rounds, Intervals: intervals}
	if err := a.timerService.Save(ctx, timer); err != nil {
		log.Printf("error saving timer: %v", err)
		return err
	}

	fmt.Printf("Saved timer %s (%s)\n", timer.Name, timer.ID)
	return nil
}

func (a *App) List(ctx context.Context) error {
	timers, err := a.timerService.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(timers) == 0 {
		fmt.Println("No timers yet, use 'add'")
		return nil
	}

	for _, t := range timers {
		total := 0
		for _, iv := range t.Intervals {
			total += iv.Duration
		}
		fmt.Printf("%s  %-20s rounds=%d intervals=%d round=%ds\n",
			t.ID, t.Name, t.Rounds, len(t.Intervals), total)
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	t, err := a.timerService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Println("No such timer:", id)
		} else {
			log.Println(err.Error())
		}
		return err
	}

	fmt.Printf("%s (%s), %d round(s)\n", t.Name, t.ID, t.Rounds)
	for _, iv := range t.Intervals {
		fmt.Printf("  %2d. %-20s %3ds  %s\n", iv.Position+1, iv.Name, iv.Duration, iv.Color)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.timerService.Delete(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			fmt.Println("No such timer:", id)
		} else {
			log.Println(err.Error())
		}
		return err
	}
	fmt.Println("Deleted", id)
	return nil
}
