// Package gateway is the only component that talks to the remote relational
// store. Every operation is short-circuited to a sentinel failure when the
// client is offline or the backend is unconfigured; remote errors are logged
// and collapsed into the same sentinel, so callers cannot (and must not)
// distinguish the failure modes. Nothing here touches the local store.
package gateway

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/connectivity"
	"github.com/showdeskhq/showdesk/internal/model"
)

// Gateway exposes typed fetch/mutate operations per collection. Fetches
// return (nil, false) on any expected failure; mutations return false.
type Gateway interface {
	Configured() bool

	FetchScheduleSlots() ([]model.ScheduleSlot, bool)
	UpsertScheduleSlot(slot model.ScheduleSlot) bool
	UpsertScheduleSlots(slots []model.ScheduleSlot) bool
	DeleteScheduleSlot(id string) bool

	FetchClips() ([]model.ClipMarker, bool)
	InsertClip(clip model.ClipMarker) bool
	UpdateClip(id string, patch model.ClipPatch) bool
	DeleteClip(id string) bool
	DeleteClips(ids []string) bool

	FetchNotes() ([]model.Note, bool)
	InsertNote(note model.Note) bool
	UpdateNote(id string, patch model.NotePatch) bool
	DeleteNote(id string) bool
	DeleteNotes(ids []string) bool

	FetchDeliverables() ([]model.Deliverable, bool)
	UpsertDeliverable(d model.Deliverable) bool
	UpsertDeliverables(ds []model.Deliverable) bool
	DeleteDeliverable(id string) bool

	FetchCompletions() ([]model.Completion, bool)
	UpsertCompletion(c model.Completion) bool
	DeleteCompletion(playerID, stationID string) bool
	ResetCompletions() bool
}

type pgGateway struct {
	db  *sqlx.DB
	mon *connectivity.Monitor
}

// compile-time check that pgGateway implements Gateway
var _ Gateway = (*pgGateway)(nil)

// NewPostgres opens a connection to the remote store. An unreachable
// database is not an error: the first ping runs inline so a healthy backend
// is online before the initial load, and on failure the retries move to the
// background. Startup never blocks on a dead backend; the monitor flips
// online whenever a retry lands.
func NewPostgres(databaseURL string, mon *connectivity.Monitor) (Gateway, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	g := &pgGateway{db: db, mon: mon}

	if err := db.Ping(); err == nil {
		log.Info().Msg("connected to remote store")
		mon.SetOnline()
		return g, nil
	}

	log.Warn().Msg("remote store unreachable, starting offline and retrying in background")
	go func() {
		const pingAttempts = 10
		for attempt := 1; attempt <= pingAttempts; attempt++ {
			time.Sleep(2 * time.Second)
			if err := db.Ping(); err == nil {
				log.Info().Msg("connected to remote store")
				mon.SetOnline()
				return
			}
		}
		log.Warn().Msg("remote store still unreachable, staying offline")
	}()
	return g, nil
}

// NewUnconfigured returns a gateway whose every operation fails with the
// sentinel. Used when no DATABASE_URL is present.
func NewUnconfigured() Gateway {
	return &pgGateway{}
}

func (g *pgGateway) Configured() bool { return g.db != nil }

// ready applies the two independent preconditions checked before any network
// call: connectivity and configuration.
func (g *pgGateway) ready() bool {
	if g.db == nil {
		return false
	}
	if g.mon == nil || !g.mon.Online() {
		return false
	}
	return true
}
