package auth

import (
	"context"
	"fmt"
	"io"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"github.com/googleapis/gax-go/v2"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/durationpb"
)

// AccessTokenGenerator is the part of the IAM Credentials client used for impersonation.
type AccessTokenGenerator interface {
	GenerateAccessToken(ctx context.Context, req *credentialspb.GenerateAccessTokenRequest, opts ...gax.CallOption) (*credentialspb.GenerateAccessTokenResponse, error)
}

var _ oauth2.TokenSource = (*ImpersonatedTokenSource)(nil)

// ImpersonatedTokenSource mints tokens for another service account.
// The source identity needs roles/iam.serviceAccountTokenCreator on the target.
type ImpersonatedTokenSource struct {
	ctx      context.Context
	client   AccessTokenGenerator
	conn     io.Closer
	target   string
	scopes   []string
	lifetime time.Duration
}

func NewImpersonatedTokenSource(ctx context.Context, base oauth2.TokenSource, target string, scopes []string, lifetime time.Duration) (*ImpersonatedTokenSource, error) {
	c, err := credentials.NewIamCredentialsClient(ctx, option.WithTokenSource(base))
	if err != nil {
		return nil, fmt.Errorf("credentials.NewIamCredentialsClient: %w", err)
	}
	return &ImpersonatedTokenSource{
		ctx:      ctx,
		client:   c,
		conn:     c,
		target:   target,
		scopes:   scopes,
		lifetime: lifetime,
	}, nil
}

// Close releases the IAM Credentials client.
func (s *ImpersonatedTokenSource) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *ImpersonatedTokenSource) Token() (*oauth2.Token, error) {
	req := &credentialspb.GenerateAccessTokenRequest{
		Name:  "projects/-/serviceAccounts/" + s.target,
		Scope: s.scopes,
	}
	if s.lifetime > 0 {
		req.Lifetime = durationpb.New(s.lifetime)
	}

	resp, err := s.client.GenerateAccessToken(s.ctx, req)
	if err != nil {
		return nil, fmt.Errorf("GenerateAccessToken: %w", err)
	}

	return &oauth2.Token{
		AccessToken: resp.GetAccessToken(),
		TokenType:   "Bearer",
		Expiry:      resp.GetExpireTime().AsTime(),
	}, nil
}
