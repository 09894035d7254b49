package rating

import "context"

// Rating is an age-rating category or one of the two sentinels.
type Rating string

const (
	RatingSU      Rating = "SU"
	Rating13      Rating = "13+"
	Rating17      Rating = "17+"
	Rating21      Rating = "21+"
	RatingUnknown Rating = "Tidak Diketahui"
	RatingError   Rating = "Error"
)

const (
	// ReasonNotRequested is reported whenever no usable reason is available.
	ReasonNotRequested = "Alasan tidak diminta."
	// ReasonRetryExhausted is reported after every attempt failed.
	ReasonRetryExhausted = "Gagal setelah percobaan berulang."

	invalidResponsePrefix = "Invalid response: "
	providerFailurePrefix = "Gagal mendapatkan rating: "
)

// Categories returns the four rating categories ordered from least to most
// restrictive.
func Categories() []Rating {
	return []Rating{RatingSU, Rating13, Rating17, Rating21}
}

// All returns every value a Result.Rating may hold.
func All() []Rating {
	return append(Categories(), RatingUnknown, RatingError)
}

// Valid reports whether r belongs to the closed rating set.
func (r Rating) Valid() bool {
	for _, candidate := range All() {
		if r == candidate {
			return true
		}
	}
	return false
}

func (r Rating) String() string {
	return string(r)
}

// Request describes one classification call.
type Request struct {
	Title         string
	Lyric         string
	IncludeReason bool
}

// Result is the normalized outcome for one row.
type Result struct {
	Rating  Rating
	Reason  string
	IsError bool
}

// Classifier sends a rendered prompt to a language model and returns the raw
// text payload. Failures should be *services.ProviderError values so the
// retry loop can tell transient from terminal problems.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
	Name() string
}

func errorResult(reason string) Result {
	return Result{Rating: RatingError, Reason: reason, IsError: true}
}
