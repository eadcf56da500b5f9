package types

// Engagement is the per-source bag of audience counters. Each platform
// defines its own counters, so the model is a tagged union: one concrete
// struct per source rather than a single sparse struct of nullable fields.
// Generic web items carry no engagement at all (nil).
type Engagement interface {
	// Kind returns the source the counters belong to.
	Kind() SourceTag
}

// ForumEngagement holds discussion-forum counters.
type ForumEngagement struct {
	Upvotes     int64   `json:"upvotes"`
	Comments    int64   `json:"comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

// Kind returns SourceForum.
func (ForumEngagement) Kind() SourceTag { return SourceForum }

// MicroblogEngagement holds microblogging-network counters.
type MicroblogEngagement struct {
	Likes   int64 `json:"likes"`
	Reposts int64 `json:"reposts"`
	Replies int64 `json:"replies"`
	Quotes  int64 `json:"quotes"`
}

// Kind returns SourceMicroblog.
func (MicroblogEngagement) Kind() SourceTag { return SourceMicroblog }

// VideoEngagement holds video-platform counters.
type VideoEngagement struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

// Kind returns SourceVideo.
func (VideoEngagement) Kind() SourceTag { return SourceVideo }

// ProfessionalEngagement holds professional-network counters.
type ProfessionalEngagement struct {
	Reactions int64 `json:"reactions"`
	Comments  int64 `json:"comments"`
}

// Kind returns SourceProfessional.
func (ProfessionalEngagement) Kind() SourceTag { return SourceProfessional }
