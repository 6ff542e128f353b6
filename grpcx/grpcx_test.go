/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package grpcx

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/code"
	"dirpx.dev/errbit/mapper"
	"dirpx.dev/errbit/report"
	"dirpx.dev/errbit/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	gcodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	gstatus "google.golang.org/grpc/status"
)

type notice struct {
	kind    errbit.Kind
	text    string
	request apis.Request
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (f *fakeNotifier) add(ctx context.Context, n notice) error {
	n.request, _ = apis.RequestFrom(ctx)
	f.mu.Lock()
	f.notices = append(f.notices, n)
	f.mu.Unlock()
	return nil
}

func (f *fakeNotifier) NotifyPlain(ctx context.Context, err error) error {
	return f.add(ctx, notice{kind: errbit.KindPlain, text: err.Error()})
}

func (f *fakeNotifier) NotifyStructured(ctx context.Context, t *errbit.Trace) error {
	return f.add(ctx, notice{kind: errbit.KindStructured, text: t.Error()})
}

func (f *fakeNotifier) all() []notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notice(nil), f.notices...)
}

func newReporter(n *fakeNotifier) *report.Reporter {
	return report.NewWithNotifier(n, report.WithSink(sink.Discard()))
}

var unaryInfo = &grpc.UnaryServerInfo{FullMethod: "/users.v1.Users/Get"}

func TestUnaryServerInterceptor_Success(t *testing.T) {
	n := &fakeNotifier{}
	icpt := UnaryServerInterceptor(newReporter(n))

	resp, err := icpt(context.Background(), "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		return "resp", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
	assert.Empty(t, n.all())
}

func TestUnaryServerInterceptor_ReportsAndReturnsSameError(t *testing.T) {
	n := &fakeNotifier{}
	icpt := UnaryServerInterceptor(newReporter(n))
	want := errbit.Wrap(errors.New("EOF"), code.Unavailable, "read profile")

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("user-agent", "grpc-go/test"))
	ctx = peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5000}})

	_, err := icpt(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		return nil, want
	})

	require.Same(t, want, err)
	got := n.all()
	require.Len(t, got, 1)
	assert.Equal(t, errbit.KindStructured, got[0].kind)
	assert.Equal(t, "read profile: EOF", got[0].text)
	assert.Equal(t, apis.Request{
		Method:     "GRPC",
		URL:        "/users.v1.Users/Get",
		Route:      "/users.v1.Users/Get",
		UserAgent:  "grpc-go/test",
		RemoteAddr: "10.0.0.1:5000",
	}, got[0].request)
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s fakeStream) Context() context.Context { return s.ctx }

func TestStreamServerInterceptor(t *testing.T) {
	n := &fakeNotifier{}
	icpt := StreamServerInterceptor(newReporter(n))
	info := &grpc.StreamServerInfo{FullMethod: "/users.v1.Users/Watch", IsServerStream: true}

	err := icpt(nil, fakeStream{ctx: context.Background()}, info, func(srv any, ss grpc.ServerStream) error {
		return errors.New("stream broke")
	})

	require.EqualError(t, err, "stream broke")
	got := n.all()
	require.Len(t, got, 1)
	assert.Equal(t, errbit.KindPlain, got[0].kind)
	assert.Equal(t, "/users.v1.Users/Watch", got[0].request.Route)
}

func TestStatusUnaryServerInterceptor(t *testing.T) {
	icpt := StatusUnaryServerInterceptor(mapper.Default())
	de := errbit.E(code.NotFound, "user not found").
		WithReason("users.lookup").
		WithDetail("id", 42)

	_, err := icpt(context.Background(), nil, unaryInfo, func(ctx context.Context, req any) (any, error) {
		return nil, de
	})

	st, ok := gstatus.FromError(err)
	require.True(t, ok)
	assert.Equal(t, gcodes.NotFound, st.Code())
	assert.Equal(t, "user not found", st.Message())

	info, ok := ExtractErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", info.GetReason())
	assert.Equal(t, Domain, info.GetDomain())
	assert.Equal(t, map[string]string{
		"reason":      "users.lookup",
		"http_status": "404",
		"id":          "42",
	}, info.GetMetadata())
}

func TestToStatus_PassThrough(t *testing.T) {
	m := mapper.Default()

	foreign := errors.New("plain")
	assert.Same(t, foreign, ToStatus(m, foreign))

	already := gstatus.Error(gcodes.Aborted, "retry")
	assert.Equal(t, already, ToStatus(m, already))

	_, ok := ExtractErrorInfo(already)
	assert.False(t, ok)
	_, ok = ExtractErrorInfo(nil)
	assert.False(t, ok)
}

func TestChain_ReporterSeesDomainError(t *testing.T) {
	n := &fakeNotifier{}
	outer := StatusUnaryServerInterceptor(mapper.Default())
	inner := UnaryServerInterceptor(newReporter(n))

	handler := func(ctx context.Context, req any) (any, error) {
		return nil, errbit.E(code.Internal, "db down")
	}
	_, err := outer(context.Background(), nil, unaryInfo, func(ctx context.Context, req any) (any, error) {
		return inner(ctx, req, unaryInfo, handler)
	})

	assert.Equal(t, gcodes.Internal, gstatus.Code(err))
	got := n.all()
	require.Len(t, got, 1)
	assert.Equal(t, "internal: db down", got[0].text)
}
