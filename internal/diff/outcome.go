package diff

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindOK Kind = iota
	KindClientError
	KindInternalError
)

// Outcome is the single result of one upload: a diff result, a classified
// extraction failure, or anything else.
type Outcome struct {
	Kind   Kind
	Result *Result
	Err    error
}

// Run parses both exports and computes the not-follow-back set.
func Run(followersData, followingData []byte) Outcome {
	following, err := ParseFollowing(followingData)
	if err != nil {
		return Classify(err)
	}
	followers, err := ParseFollowers(followersData)
	if err != nil {
		return Classify(err)
	}
	res, err := Compute(followers, following)
	if err != nil {
		return Classify(err)
	}
	return Outcome{Kind: KindOK, Result: res}
}

// Classify turns an error into an outcome. Extraction errors are client
// errors; everything else is internal.
func Classify(err error) Outcome {
	var extractErr *ExtractionError
	if errors.As(err, &extractErr) {
		return Outcome{Kind: KindClientError, Err: extractErr}
	}
	return Outcome{Kind: KindInternalError, Err: err}
}

func (o Outcome) Status() int {
	switch o.Kind {
	case KindOK:
		return http.StatusOK
	case KindClientError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON payload for the outcome.
func (o Outcome) Body() any {
	if o.Kind == KindOK {
		if o.Result == nil {
			return newResult()
		}
		return o.Result
	}
	return map[string]string{"error": o.message()}
}

func (o Outcome) message() string {
	if o.Err == nil || o.Err.Error() == "" {
		return "internal error"
	}
	return o.Err.Error()
}
