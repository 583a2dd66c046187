package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/core/report"
)

type reportRepository struct {
	db *reportTable
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db.report}
}

func (repo *reportRepository) query() []report.Report {
	reports := make([]report.Report, 0, len(repo.db.table))
	for _, rep := range repo.db.table {
		reports = append(reports, *rep)
	}
	// newest first
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID > reports[j].ID })
	return reports
}

func (repo *reportRepository) CreateReport(_ context.Context, rep report.Report) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	rep.ID = repo.db.seq
	repo.db.table[rep.ID] = &rep
	return rep, nil
}

func (repo *reportRepository) QueryReports(_ context.Context, filter *report.QueryFilter, _ []core.DBOrdering) ([]report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reports := repo.query()
	if filter == nil {
		return reports, nil
	}

	filtered := make([]report.Report, 0, len(reports))
	for _, rep := range reports {
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(rep.Title), kw) &&
				!strings.Contains(strings.ToLower(rep.FileName), kw) {
				continue
			}
		}
		if filter.UploadedBy != nil && rep.UploadedBy != *filter.UploadedBy {
			continue
		}
		filtered = append(filtered, rep)
	}
	return filtered, nil
}

func (repo *reportRepository) GetReportByID(_ context.Context, id int) (report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rep, ok := repo.db.table[id]; ok {
		return *rep, nil
	}
	return report.Report{}, report.ErrNotFound
}

func (repo *reportRepository) DeleteReportsByID(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
