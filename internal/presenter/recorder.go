package presenter

import (
	"github.com/valpere/pogoda/pkg/weather"
)

// Recorder keeps the final state and every transition of a request cycle.
// It backs the JSON API and tests.
type Recorder struct {
	DefaultSubmitLabel string

	State          RequestState
	Transitions    []RequestState
	Query          string
	SubmitDisabled bool
	SubmitLabel    string
	Resets         int
}

func NewRecorder(defaultSubmitLabel string) *Recorder {
	return &Recorder{
		DefaultSubmitLabel: defaultSubmitLabel,
		State:              Idle(),
		SubmitLabel:        defaultSubmitLabel,
	}
}

func (r *Recorder) ShowLoading(message string) {
	r.SubmitDisabled = true
	r.SubmitLabel = message
	r.transition(Loading(message))
}

func (r *Recorder) ShowError(message string) {
	r.restore()
	r.transition(Failure(message))
}

func (r *Recorder) ShowWeather(view *weather.View) {
	r.restore()
	r.transition(Success(view))
}

func (r *Recorder) ResetSubmitControl() {
	r.restore()
	r.Resets++
}

func (r *Recorder) SetQuery(city string) {
	r.Query = city
}

func (r *Recorder) restore() {
	r.SubmitDisabled = false
	r.SubmitLabel = r.DefaultSubmitLabel
}

func (r *Recorder) transition(state RequestState) {
	r.State = state
	r.Transitions = append(r.Transitions, state)
}
