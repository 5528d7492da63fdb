// internal/app/features/feedback/list.go
package feedback

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/dalemusser/feedbackhub/internal/app/system/httpjson"
	"github.com/dalemusser/feedbackhub/internal/app/system/paging"
	"github.com/dalemusser/feedbackhub/internal/app/system/timeouts"
	"github.com/dalemusser/feedbackhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// feedbackRow is the list projection of a feedback item. The body is
// deliberately left out; fetch a single item for it.
type feedbackRow struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	Title         string              `bson:"title" json:"title"`
	TitleCI       string              `bson:"title_ci" json:"-"`
	State         string              `bson:"state" json:"state"`
	AuthorID      primitive.ObjectID  `bson:"author_id" json:"author_id"`
	VillageID     *primitive.ObjectID `bson:"village_id,omitempty" json:"village_id,omitempty"`
	DuplicateOfID *primitive.ObjectID `bson:"duplicate_of_id,omitempty" json:"duplicate_of_id,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}

// listResponse is the JSON envelope for GET /api/feedback.
type listResponse struct {
	Items      []feedbackRow `json:"items"`
	Shown      int           `json:"shown"`
	Total      int64         `json:"total"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
	PrevCursor string        `json:"prev_cursor,omitempty"`
	NextCursor string        `json:"next_cursor,omitempty"`
	RangeStart int           `json:"range_start"`
	RangeEnd   int           `json:"range_end"`
}

// ServeList handles GET /api/feedback (with optional ?q= title search and
// ?state= filter). Pagination is keyset-based over title_ci via the
// after=/before= cursors.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")
	state := query.Get(r, "state")
	after := query.Get(r, "after")
	before := query.Get(r, "before")
	start := paging.ParseStart(r)

	if state != "" && state != models.FeedbackActive && state != models.FeedbackMerged {
		httpjson.Error(w, http.StatusBadRequest, `state must be "active" or "merged"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Build base filter
	base := bson.M{}
	if state != "" {
		base["state"] = state
	}
	if lo, hi := text.PrefixRange(q); lo != "" {
		base["title_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}

	// Count total
	total, err := h.DB.Collection("feedback").CountDocuments(ctx, base)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count feedback failed", err, "Unable to load feedback.")
		return
	}

	// Clone base filter for pagination query
	f := maps.Clone(base)
	find := options.Find().SetProjection(bson.M{"body": 0})
	sortField := "title_ci"

	// Configure keyset pagination
	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, sortField)

	// Apply cursor conditions (the prefix window on title_ci is replaced
	// by the cursor window, which already bounds the same field)
	if ks := cfg.KeysetWindow(sortField); ks != nil {
		if _, both := f["title_ci"]; both {
			f["$and"] = []bson.M{{"title_ci": base["title_ci"]}, ks}
			delete(f, "title_ci")
		} else {
			maps.Copy(f, ks)
		}
	}

	cur, err := h.DB.Collection("feedback").Find(ctx, f, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find feedback failed", err, "Unable to load feedback.")
		return
	}
	defer cur.Close(ctx)

	var rows []feedbackRow
	if err := cur.All(ctx, &rows); err != nil {
		h.ErrLog.LogServerError(w, r, "decode feedback failed", err, "Unable to load feedback.")
		return
	}

	// Reverse if paging backwards
	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}

	// Apply pagination trimming
	page := paging.TrimPage(&rows, before, after)

	shown := len(rows)
	rng := paging.ComputeRange(start, shown)

	prevCur, nextCur := paging.BuildCursors(rows,
		func(row feedbackRow) string { return row.TitleCI },
		func(row feedbackRow) primitive.ObjectID { return row.ID })

	if rows == nil {
		rows = []feedbackRow{}
	}

	httpjson.Write(w, http.StatusOK, listResponse{
		Items:      rows,
		Shown:      shown,
		Total:      total,
		HasPrev:    page.HasPrev,
		HasNext:    page.HasNext,
		PrevCursor: prevCur,
		NextCursor: nextCur,
		RangeStart: rng.Start,
		RangeEnd:   rng.End,
	})
}
