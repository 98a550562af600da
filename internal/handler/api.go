/**
* Name: 			api.go
* Description: 		Shared handler state for the recording API
* Workflow: 		assignment -> record (external) -> upload -> ledger
 */
package handler

import (
	"time"

	"github.com/SonOfTheSea21/dialect-app/internal/ledger"
	"github.com/SonOfTheSea21/dialect-app/internal/selector"
	"github.com/SonOfTheSea21/dialect-app/internal/storage"
)

// DefaultUserID labels submissions from volunteers who never typed a name.
const DefaultUserID = "guest"

// API bundles the injected collaborators every handler needs. One instance
// serves all requests; handlers hold no per-request state of their own.
type API struct {
	Store    storage.Adapter
	Blobs    storage.BlobStore
	Selector *selector.Selector
	Ledger   *ledger.Ledger

	// Named zone stamped into submission filenames
	Timezone *time.Location
}

type ErrorResponse struct {
	Error string `json:"error" example:"reason for the failure"`
}
