// Package actual records the irrigation depth operators really applied.
package actual

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LeonardoBeccarini/irrixa/internal/apperrors"
	"github.com/LeonardoBeccarini/irrixa/internal/model/entities"
)

const dateLayout = "2006-01-02"

// Saver is the part of the persistence gateway the reconciler needs.
type Saver interface {
	SaveActualIrrigation(ctx context.Context, rec entities.ActualIrrigationRecord) error
}

// Reconciler validates operator input and forwards it to the backend.
// It holds no state of its own.
type Reconciler struct {
	saver Saver
	loc   *time.Location
	now   func() time.Time
}

func NewReconciler(saver Saver, loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{saver: saver, loc: loc, now: time.Now}
}

// Record parses rawInput as a depth in mm and stores it for block and date.
// An empty date means today. Negative depths are accepted.
func (r *Reconciler) Record(ctx context.Context, blockName, date, rawInput string) (entities.ActualIrrigationRecord, error) {
	blockName = strings.TrimSpace(blockName)
	if blockName == "" {
		return entities.ActualIrrigationRecord{}, &apperrors.InvalidInputError{Field: "block", Value: blockName}
	}
	date, err := r.normalizeDate(date)
	if err != nil {
		return entities.ActualIrrigationRecord{}, err
	}
	mm, err := ParseDepth(rawInput)
	if err != nil {
		return entities.ActualIrrigationRecord{}, err
	}

	rec := entities.ActualIrrigationRecord{BlockName: blockName, Date: date, DepthMM: mm}
	if err := r.saver.SaveActualIrrigation(ctx, rec); err != nil {
		var pe *apperrors.PersistError
		if errors.As(err, &pe) {
			return entities.ActualIrrigationRecord{}, err
		}
		return entities.ActualIrrigationRecord{}, &apperrors.PersistError{Op: "save_actual_irrigation", Block: blockName, Err: err}
	}
	return rec, nil
}

func (r *Reconciler) normalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return r.now().In(r.loc).Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", &apperrors.InvalidInputError{Field: "date", Value: date, Err: err}
	}
	return date, nil
}

// plain decimal notation only: no hex, no digit grouping, no inf/nan words
var depthPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// "1,000" reads as one thousand or as one; refuse to guess
var groupedThousands = regexp.MustCompile(`^[+-]?\d{1,3},\d{3}$`)

// ParseDepth reads a typed depth. A single decimal comma is accepted in place of the point.
func ParseDepth(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &apperrors.InvalidInputError{Field: "mm", Value: raw, Err: errors.New("empty")}
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if groupedThousands.MatchString(s) {
			return 0, &apperrors.InvalidInputError{Field: "mm", Value: raw, Err: errors.New("ambiguous separator")}
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	if !depthPattern.MatchString(s) {
		return 0, &apperrors.InvalidInputError{Field: "mm", Value: raw, Err: errors.New("not a number")}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &apperrors.InvalidInputError{Field: "mm", Value: raw, Err: errors.New("not a number")}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &apperrors.InvalidInputError{Field: "mm", Value: raw, Err: errors.New("not a finite number")}
	}
	return v, nil
}
