package queue

import (
	"sort"
	"strings"
	"time"

	"garment-golang/internal/storage"
	"garment-golang/internal/timeutil"
)

// Tier base scores, indexed by priority. Tiers stack with the other
// components; there is no upper bound on the total.
var tierScore = map[storage.Priority]int{
	storage.PriorityNormal:    0,
	storage.PriorityRush:      25,
	storage.PriorityUrgent:    50,
	storage.PriorityEmergency: 100,
}

const (
	waitBonusPerDay = 2
	waitBonusCap    = 20
	smallBatchQty   = 50
	smallBatchBonus = 5
)

// Score computes the queue priority score. Pure function of the job and now.
func Score(job *storage.ProductionJob, now time.Time) int {
	score := tierScore[job.Priority]

	if job.DueDate != nil {
		switch days := timeutil.DaysUntil(*job.DueDate, now); {
		case days <= 0:
			score += 50
		case days == 1:
			score += 40
		case days <= 3:
			score += 30
		case days <= 7:
			score += 15
		}
	}

	wait := timeutil.DaysSince(job.CreatedAt, now) * waitBonusPerDay
	if wait > waitBonusCap {
		wait = waitBonusCap
	}
	score += wait

	if job.OrderedQty <= smallBatchQty {
		score += smallBatchBonus
	}

	return score
}

// Filter is a pure predicate over jobs, applied before scoring.
type Filter struct {
	WorkType    string
	MinPriority *storage.Priority
	Stage       Stage
	// Search matches job number and customer, substring, case-insensitive.
	Search string
}

func (f Filter) Match(job *storage.ProductionJob) bool {
	if f.WorkType != "" && job.WorkType != f.WorkType {
		return false
	}
	if f.MinPriority != nil && job.Priority < *f.MinPriority {
		return false
	}
	if f.Stage != "" && StageOf(job.Status) != f.Stage {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if strings.Contains(strings.ToLower(job.JobNumber), needle) {
			return true
		}
		if job.Customer != nil && strings.Contains(strings.ToLower(*job.Customer), needle) {
			return true
		}
		return false
	}
	return true
}

// JobFilter translates the predicate into the repository filter so the
// narrowing runs in SQL. Match stays authoritative over whatever the
// repository returns.
func (f Filter) JobFilter() storage.JobFilter {
	jf := storage.JobFilter{
		WorkType:    f.WorkType,
		MinPriority: f.MinPriority,
		Search:      f.Search,
	}
	if f.Stage != "" {
		jf.Statuses = StageStatuses(f.Stage)
	}
	return jf
}

type ScoredJob struct {
	*storage.ProductionJob
	Score int `json:"score"`
}

// Order filters, scores and sorts jobs: descending score, ties broken by
// earlier created_at, then by id. The tie-break is part of the comparator,
// not an artifact of sort stability.
func Order(jobs []*storage.ProductionJob, now time.Time, filter Filter) []ScoredJob {
	scored := make([]ScoredJob, 0, len(jobs))
	for _, job := range jobs {
		if !filter.Match(job) {
			continue
		}
		scored = append(scored, ScoredJob{ProductionJob: job, Score: Score(job, now)})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return scored
}

// Stage is a kanban column: a fixed, ordered bucket of statuses.
type Stage string

const (
	StageQueue      Stage = "queue"
	StageProduction Stage = "production"
	StageQuality    Stage = "quality"
	StageDone       Stage = "done"
)

// Stages returns the columns in board order.
func Stages() []Stage {
	return []Stage{StageQueue, StageProduction, StageQuality, StageDone}
}

func ValidStage(s Stage) bool {
	for _, known := range Stages() {
		if s == known {
			return true
		}
	}
	return false
}

// StageStatuses returns the statuses a stage covers, in canonical order.
func StageStatuses(stage Stage) []storage.JobStatus {
	var out []storage.JobStatus
	for _, st := range storage.AllStatuses {
		if stageOf[st] == stage {
			out = append(out, st)
		}
	}
	return out
}

var stageOf = map[storage.JobStatus]Stage{
	storage.StatusPending:    StageQueue,
	storage.StatusQueued:     StageQueue,
	storage.StatusAssigned:   StageQueue,
	storage.StatusInProgress: StageProduction,
	storage.StatusRework:     StageProduction,
	storage.StatusQCCheck:    StageQuality,
	storage.StatusQCPassed:   StageQuality,
	storage.StatusQCFailed:   StageQuality,
	storage.StatusCompleted:  StageDone,
	storage.StatusCancelled:  StageDone,
}

func StageOf(status storage.JobStatus) Stage {
	return stageOf[status]
}

// GroupByStage partitions an already ordered list into stage buckets,
// preserving the queue order inside each bucket.
func GroupByStage(scored []ScoredJob) map[Stage][]ScoredJob {
	groups := make(map[Stage][]ScoredJob, len(stageOf))
	for _, stage := range Stages() {
		groups[stage] = []ScoredJob{}
	}
	for _, job := range scored {
		stage := StageOf(job.Status)
		groups[stage] = append(groups[stage], job)
	}
	return groups
}
