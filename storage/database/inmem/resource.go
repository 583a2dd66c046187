package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/resource"
)

type resourceRepository struct {
	db       *resourceTable
	bookings *bookingTable
}

var _ resource.Repository = (*resourceRepository)(nil) // interface compliance check

func NewResourceRepository(db *DB) *resourceRepository {
	return &resourceRepository{db: db.resource, bookings: db.booking}
}

func (repo *resourceRepository) query() []resource.Resource {
	resources := make([]resource.Resource, 0, len(repo.db.table))
	for _, res := range repo.db.table {
		resources = append(resources, *res)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].Name < resources[j].Name })
	return resources
}

func (repo *resourceRepository) queryBookings() []resource.Booking {
	bookings := make([]resource.Booking, 0, len(repo.bookings.table))
	for _, bkg := range repo.bookings.table {
		bookings = append(bookings, *bkg)
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].StartTime.Equal(bookings[j].StartTime) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})
	return bookings
}

func (repo *resourceRepository) CreateResource(_ context.Context, res resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	res.ID = repo.db.seq
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) QueryResources(_ context.Context, filter *resource.QueryFilter, _ []core.DBOrdering) ([]resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	resources := repo.query()
	if filter == nil {
		return resources, nil
	}

	filtered := make([]resource.Resource, 0, len(resources))
	for _, res := range resources {
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(res.Name), kw) &&
				!strings.Contains(strings.ToLower(res.Location), kw) {
				continue
			}
		}
		if filter.Kind != "" && res.Kind != filter.Kind {
			continue
		}
		if filter.IsActive != nil {
			active := res.IsActive == nil || *res.IsActive
			if active != *filter.IsActive {
				continue
			}
		}
		filtered = append(filtered, res)
	}
	return filtered, nil
}

func (repo *resourceRepository) GetResourceByID(_ context.Context, id int) (resource.Resource, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if res, ok := repo.db.table[id]; ok {
		return *res, nil
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (repo *resourceRepository) UpdateResource(_ context.Context, res resource.Resource) (resource.Resource, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[res.ID]; !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	repo.db.table[res.ID] = &res
	return res, nil
}

func (repo *resourceRepository) DeleteResourcesByID(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *resourceRepository) CreateBooking(_ context.Context, bkg resource.Booking) (resource.Booking, error) {
	repo.bookings.Lock()
	defer repo.bookings.Unlock()

	repo.bookings.seq++
	bkg.ID = repo.bookings.seq
	repo.bookings.table[bkg.ID] = &bkg
	return bkg, nil
}

func (repo *resourceRepository) QueryBookings(_ context.Context, filter *resource.BookingQueryFilter, _ []core.DBOrdering) ([]resource.Booking, error) {
	repo.bookings.RLock()
	defer repo.bookings.RUnlock()

	bookings := repo.queryBookings()
	if filter == nil {
		return bookings, nil
	}

	filtered := make([]resource.Booking, 0, len(bookings))
	for _, bkg := range bookings {
		if filter.ResourceID != nil && bkg.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.UserID != nil && bkg.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && bkg.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && !bkg.EndTime.After(filter.From.UTC()) {
			continue
		}
		if !filter.To.IsZero() && !bkg.StartTime.Before(filter.To.UTC()) {
			continue
		}
		filtered = append(filtered, bkg)
	}
	return filtered, nil
}

func (repo *resourceRepository) GetBookingByID(_ context.Context, id int) (resource.Booking, error) {
	repo.bookings.RLock()
	defer repo.bookings.RUnlock()

	if bkg, ok := repo.bookings.table[id]; ok {
		return *bkg, nil
	}
	return resource.Booking{}, resource.ErrBookingNotFound
}

func (repo *resourceRepository) UpdateBooking(_ context.Context, bkg resource.Booking) (resource.Booking, error) {
	repo.bookings.Lock()
	defer repo.bookings.Unlock()

	origBkg, ok := repo.bookings.table[bkg.ID]
	if !ok {
		return resource.Booking{}, resource.ErrBookingNotFound
	}
	if bkg.Status != "" {
		origBkg.Status = bkg.Status
	}
	if bkg.Notes != "" {
		origBkg.Notes = bkg.Notes
	}
	if !bkg.UpdatedAt.IsZero() {
		origBkg.UpdatedAt = bkg.UpdatedAt
	}
	return *origBkg, nil
}

// QueryOverlappingBookings matches the half-open [start, end) interval against
// stored bookings of the resource.
func (repo *resourceRepository) QueryOverlappingBookings(
	_ context.Context, resourceID int, start, end time.Time, statuses ...string,
) ([]resource.Booking, error) {
	repo.bookings.RLock()
	defer repo.bookings.RUnlock()

	var overlapping []resource.Booking
	for _, bkg := range repo.queryBookings() {
		if bkg.ResourceID != resourceID {
			continue
		}
		if !bkg.StartTime.Before(end) || !bkg.EndTime.After(start) {
			continue
		}
		if len(statuses) > 0 {
			var match bool
			for _, status := range statuses {
				if bkg.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		overlapping = append(overlapping, bkg)
	}
	return overlapping, nil
}
