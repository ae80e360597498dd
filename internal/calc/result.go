package calc

import "github.com/annel0/voxel-nav/internal/path"

// ResultType классифицирует исход расчёта пути
type ResultType int

const (
	// ResultSuccessToGoal — найден полный путь до цели
	ResultSuccessToGoal ResultType = iota

	// ResultSuccessSegment — найден частичный сегмент в сторону цели
	ResultSuccessSegment

	// ResultFailure — путь не найден
	ResultFailure

	// ResultCancellation — расчёт отменён
	ResultCancellation

	// ResultException — расчёт завершился ошибкой
	ResultException
)

// String возвращает строковое представление типа результата
func (t ResultType) String() string {
	switch t {
	case ResultSuccessToGoal:
		return "SUCCESS_TO_GOAL"
	case ResultSuccessSegment:
		return "SUCCESS_SEGMENT"
	case ResultFailure:
		return "FAILURE"
	case ResultCancellation:
		return "CANCELLATION"
	case ResultException:
		return "EXCEPTION"
	default:
		return "UNKNOWN"
	}
}

// Result — итог одного расчёта пути
type Result struct {
	Type ResultType
	Path *path.Path // nil, если путь не найден
}
