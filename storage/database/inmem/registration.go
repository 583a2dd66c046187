package inmemdb

import (
	"context"
	"sort"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/registration"
)

type registrationRepository struct {
	db *registrationTable
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) *registrationRepository {
	return &registrationRepository{db: db.registration}
}

func (repo *registrationRepository) query() []registration.Registration {
	regs := make([]registration.Registration, 0, len(repo.db.table))
	for _, reg := range repo.db.table {
		regs = append(regs, *reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs
}

func (repo *registrationRepository) CreateRegistration(_ context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	reg.ID = repo.db.seq
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *registrationRepository) QueryRegistrations(_ context.Context, filter *registration.QueryFilter, _ []core.DBOrdering) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := repo.query()
	if filter == nil {
		return regs, nil
	}

	filtered := make([]registration.Registration, 0, len(regs))
	for _, reg := range regs {
		if filter.EventID != nil && reg.EventID != *filter.EventID {
			continue
		}
		if filter.UserID != nil && reg.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		filtered = append(filtered, reg)
	}
	return filtered, nil
}

func (repo *registrationRepository) GetRegistrationByID(_ context.Context, id int) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if reg, ok := repo.db.table[id]; ok {
		return *reg, nil
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) GetRegistrationByEventAndUser(_ context.Context, eventID, userID int) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, reg := range repo.query() {
		if reg.EventID == eventID && reg.UserID == userID {
			return reg, nil
		}
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) UpdateRegistration(_ context.Context, reg registration.Registration) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origReg, ok := repo.db.table[reg.ID]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	if reg.Status != "" {
		origReg.Status = reg.Status
	}
	if !reg.UpdatedAt.IsZero() {
		origReg.UpdatedAt = reg.UpdatedAt
	}
	return *origReg, nil
}

func (repo *registrationRepository) CountByEvent(_ context.Context, eventID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, reg := range repo.db.table {
		if reg.EventID == eventID && reg.Status != registration.StatusCancelled {
			count++
		}
	}
	return count, nil
}
