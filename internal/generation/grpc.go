package generation

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ppiankov/truthslies/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "truthslies.v1.TruthsLiesGeneratorService"
	// GenerateMethod is the full method name of the unary Generate call
	GenerateMethod = "/" + ServiceName + "/Generate"
)

// GRPCClient calls the generation service over gRPC
type GRPCClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewGRPCClient creates a client for target. TLS is used unless insecureConn is set.
// The connection is established lazily on the first call.
func NewGRPCClient(target string, insecureConn bool, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	if insecureConn {
		creds = insecure.NewCredentials()
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("create grpc client: %w", err)
	}

	return &GRPCClient{conn: conn, timeout: timeout}, nil
}

// Generate performs the unary call
func (c *GRPCClient) Generate(ctx context.Context, req *model.GenerationRequest) ([]model.Statement, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var resp model.GenerationResponse
	if err := c.conn.Invoke(ctx, GenerateMethod, req, &resp); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if resp.Statements == nil {
		return []model.Statement{}, nil
	}
	return resp.Statements, nil
}

// Close releases the connection
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
