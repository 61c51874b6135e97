package azure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// SignIn validates access using a minimal list (a container SAS cannot
// create containers, so existence is required up front).
func (p *Provider) SignIn(ctx context.Context) error {
	if err := p.Initialize(ctx); err != nil {
		return err
	}
	start := time.Now()

	pager := p.client.NewListBlobsFlatPager(p.container, &azblob.ListBlobsFlatOptions{
		MaxResults: to.Ptr(int32(1)),
	})
	if pager.More() {
		if _, err := pager.NextPage(ctx); err != nil {
			var re *azcore.ResponseError
			if errors.As(err, &re) {
				switch re.ErrorCode {
				case string(bloberror.ContainerNotFound):
					return fmt.Errorf("container %q not found: create it first", p.container)
				case string(bloberror.AuthorizationFailure),
					string(bloberror.AuthorizationPermissionMismatch),
					string(bloberror.AuthenticationFailed):
					return fmt.Errorf("not authorized for container %q; ensure credentials grant at least rwl", p.container)
				}
			}
			return fmt.Errorf("azure sign-in: %w", err)
		}
	}

	log.Debug().
		Str("action", "azure_signin").
		Str("container", p.container).
		Dur("elapsed_ms", time.Since(start)).
		Msg("container access OK")
	return nil
}
