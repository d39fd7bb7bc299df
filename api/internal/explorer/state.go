package explorer

import (
	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/facts"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StateResult
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateResult:
		return "result"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// View is an immutable snapshot of a controller. Exactly one of Fact,
// Error and Description is meaningful, selected by State.
type View struct {
	State        State              `json:"state"`
	ArtifactName string             `json:"artifact_name,omitempty"`
	WordCount    int                `json:"word_count,omitempty"`
	Fact         *facts.HistoryFact `json:"fact,omitempty"`
	Error        string             `json:"error,omitempty"`
	Description  string             `json:"description,omitempty"`
	ImageURL     string             `json:"image_url,omitempty"`
}

func (v View) Idle() bool    { return v.State == StateIdle }
func (v View) Loading() bool { return v.State == StateLoading }
func (v View) Failed() bool  { return v.State == StateError }
func (v View) HasResult() bool {
	return v.State == StateResult
}

func buildView(state State, req *artifact.Request, description, errMsg string, cycler *facts.Cycler) View {
	v := View{State: state}
	if req != nil {
		v.ArtifactName = req.Name
		v.WordCount = req.WordCount
	}
	switch state {
	case StateLoading:
		if cycler != nil {
			f := cycler.Current()
			v.Fact = &f
		}
	case StateError:
		v.Error = errMsg
	case StateResult:
		v.Description = description
		if req != nil && req.HasImage() {
			v.ImageURL = req.Image.DataURL()
		}
	}
	return v
}
