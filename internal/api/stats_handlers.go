package api

import (
	"net/http"
	"reflect"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/invopop/jsonschema"

	"github.com/vytor/birdtalk/internal/progress"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	summary, err := s.ProgressService.Summary(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

// snapshotSchema describes the stored progress document.
var snapshotSchema = sync.OnceValue(func() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(civil.Date{}) {
				return &jsonschema.Schema{Type: "string", Format: "date"}
			}
			return nil
		},
	}
	schema := reflector.Reflect(&progress.Snapshot{})
	schema.Title = "Progress snapshot"
	return schema
})

func (s *Server) handleStatsSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, snapshotSchema())
}
