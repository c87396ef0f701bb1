package api

import (
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/priotrack/internal/record"
	"github.com/kalambet/priotrack/internal/store"
)

func (d AppDeps) loadActivities() ([]record.ActivityRecord, []record.RowError, error) {
	rows, err := d.Store.Records(store.TableActivityLog)
	if err != nil {
		return nil, nil, err
	}
	records, warnings := record.ParseActivities(rows, d.Norm)
	return records, warnings, nil
}

func (d AppDeps) loadSchedule() ([]record.ScheduleEntry, []record.RowError, error) {
	rows, err := d.Store.Records(store.TableSchedule)
	if err != nil {
		return nil, nil, err
	}
	entries, warnings := record.ParseSchedule(rows, d.Norm)
	return entries, warnings, nil
}

// snapshot is one concurrent read of both tables. Per-table errors stay on
// the snapshot so report sections can degrade independently.
type snapshot struct {
	activities   []record.ActivityRecord
	activityWarn []record.RowError
	schedule     []record.ScheduleEntry
	scheduleWarn []record.RowError
	activityErr  error
	scheduleErr  error
}

func (d AppDeps) loadSnapshot() snapshot {
	var s snapshot
	var g errgroup.Group
	g.Go(func() error {
		s.activities, s.activityWarn, s.activityErr = d.loadActivities()
		return s.activityErr
	})
	g.Go(func() error {
		s.schedule, s.scheduleWarn, s.scheduleErr = d.loadSchedule()
		return s.scheduleErr
	})
	_ = g.Wait()
	return s
}

func (s snapshot) err() error {
	if s.activityErr != nil {
		return s.activityErr
	}
	return s.scheduleErr
}

func warningStrings(errs []record.RowError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
