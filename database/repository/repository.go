package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.mongodb.org/mongo-driver/mongo"

	"tourly/config"
	"tourly/database/memdb"
	reservationRepo "tourly/database/repository/reservation"
	timeslotRepo "tourly/database/repository/timeslot"
	tourRepo "tourly/database/repository/tour"
)

// Re-export the repository interfaces.
type (
	TourRepository        = tourRepo.TourRepository
	TimeSlotRepository    = timeslotRepo.TimeSlotRepository
	ReservationRepository = reservationRepo.ReservationRepository
)

// Repositories groups the document store collections behind one backend.
type Repositories struct {
	Backend      string
	Tours        TourRepository
	Slots        TimeSlotRepository
	Reservations ReservationRepository
}

// Ping probes the backing store.
func (r *Repositories) Ping(ctx context.Context) error {
	return r.Reservations.Ping(ctx)
}

// Clients carries the already-initialised backend clients; only the one matching the
// configured backend is used.
type Clients struct {
	Mongo     *mongo.Client
	Firestore *firestore.Client
	Memory    *memdb.DB
}

// Open builds the repositories for cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config, clients Clients) (*Repositories, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		if clients.Mongo == nil {
			return nil, fmt.Errorf("repository: mongo backend selected but no client given")
		}
		db := clients.Mongo.Database(cfg.DatabaseName)
		for _, ensure := range []func(*mongo.Database) error{
			tourRepo.EnsureIndexes,
			timeslotRepo.EnsureIndexes,
			reservationRepo.EnsureIndexes,
		} {
			if err := ensure(db); err != nil {
				return nil, err
			}
		}
		return &Repositories{
			Backend:      cfg.StoreBackend,
			Tours:        tourRepo.NewMongoTourRepo(db),
			Slots:        timeslotRepo.NewMongoTimeSlotRepo(db),
			Reservations: reservationRepo.NewMongoReservationRepo(db),
		}, nil

	case config.BackendFirestore:
		if clients.Firestore == nil {
			return nil, fmt.Errorf("repository: firestore backend selected but no client given")
		}
		return &Repositories{
			Backend:      cfg.StoreBackend,
			Tours:        tourRepo.NewFirestoreTourRepo(clients.Firestore),
			Slots:        timeslotRepo.NewFirestoreTimeSlotRepo(clients.Firestore),
			Reservations: reservationRepo.NewFirestoreReservationRepo(clients.Firestore, cfg.BookingMaxAttempts),
		}, nil

	case config.BackendMemory:
		db := clients.Memory
		if db == nil {
			db = memdb.New(memdb.WithMaxAttempts(cfg.BookingMaxAttempts))
		}
		return NewMemory(db), nil

	default:
		return nil, fmt.Errorf("repository: unknown store backend %q", cfg.StoreBackend)
	}
}

// NewMemory wires every repository to the same in-process store.
func NewMemory(db *memdb.DB) *Repositories {
	return &Repositories{
		Backend:      config.BackendMemory,
		Tours:        tourRepo.NewMemoryTourRepo(db),
		Slots:        timeslotRepo.NewMemoryTimeSlotRepo(db),
		Reservations: reservationRepo.NewMemoryReservationRepo(db),
	}
}
