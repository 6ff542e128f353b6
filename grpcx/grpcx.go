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

	"dirpx.dev/errbit"
	"dirpx.dev/errbit/adapter"
	"dirpx.dev/errbit/apis"
	"dirpx.dev/errbit/report"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	gcodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	gstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/anypb"
)

// Domain is the ErrorInfo domain set by StatusUnaryServerInterceptor.
const Domain = "errbit.dirpx.dev"

// UnaryServerInterceptor reports every handler error to rep as a propagated
// failure and returns it unchanged.
//
// Chain it inside StatusUnaryServerInterceptor so the reporter sees the
// domain error rather than its status projection:
//
//	grpc.ChainUnaryInterceptor(
//	    grpcx.StatusUnaryServerInterceptor(m),
//	    grpcx.UnaryServerInterceptor(rep),
//	)
func UnaryServerInterceptor(rep *report.Reporter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			rep.Report(requestContext(ctx, info.FullMethod), apis.OutcomePropagated, err)
		}
		return resp, err
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streaming calls.
func StreamServerInterceptor(rep *report.Reporter) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if err != nil {
			rep.Report(requestContext(ss.Context(), info.FullMethod), apis.OutcomePropagated, err)
		}
		return err
	}
}

func requestContext(ctx context.Context, fullMethod string) context.Context {
	req := apis.Request{
		Method: "GRPC",
		URL:    fullMethod,
		Route:  fullMethod,
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ua := md.Get("user-agent"); len(ua) > 0 {
			req.UserAgent = ua[0]
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		req.RemoteAddr = p.Addr.String()
	}
	return apis.WithRequest(ctx, req)
}

// StatusUnaryServerInterceptor maps errbit.Error into gRPC errors carrying
// a google.rpc.ErrorInfo detail.
//
// The provided apis.Mapper is used to map domain error codes/reasons into
// transport status codes. Errors that are not errbit.Error, and errors that
// already carry a gRPC status, are returned as-is.
func StatusUnaryServerInterceptor(m apis.Mapper) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, ToStatus(m, err)
	}
}

// ToStatus converts err with m. See StatusUnaryServerInterceptor.
func ToStatus(m apis.Mapper, err error) error {
	if _, ok := err.(interface{ GRPCStatus() *gstatus.Status }); ok {
		return err
	}
	var de *errbit.Error
	if !errors.As(err, &de) {
		return err
	}

	st := m.Status(de.Code, de.Reason)
	if st.GRPC == gcodes.OK {
		st.GRPC = gcodes.Unknown
	}
	base := gstatus.New(st.GRPC, de.Message)

	// Try to attach the detail. If it fails, return base.
	if with, werr := base.WithDetails(adapter.ToErrorInfo(de, Domain, st)); werr == nil {
		return with.Err()
	}
	return base.Err()
}

// ExtractErrorInfo pulls google.rpc.ErrorInfo out of a gRPC error, if
// present. Useful in tests and client code.
func ExtractErrorInfo(err error) (*errdetails.ErrorInfo, bool) {
	if err == nil {
		return nil, false
	}
	st, ok := gstatus.FromError(err)
	if !ok {
		return nil, false
	}
	return errorInfoFrom(st.Proto().GetDetails())
}

func errorInfoFrom(details []*anypb.Any) (*errdetails.ErrorInfo, bool) {
	for _, d := range details {
		info := new(errdetails.ErrorInfo)
		if d.MessageIs(info) && d.UnmarshalTo(info) == nil {
			return info, true
		}
	}
	return nil, false
}
