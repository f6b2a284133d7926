// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apitest

import (
	"bytes"
	"context"
	"io"
)

func withUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, ctxUser{}, user)
}

func userFrom(ctx context.Context) string {
	u, _ := ctx.Value(ctxUser{}).(string)
	return u
}

func readCloser(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}
