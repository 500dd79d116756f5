// Copyright 2016 The Cockroach Authors.
// Copyright (c) 2024-present, The veloxdb Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is a thin leveled-logging facade over zap.SugaredLogger. The
// shape is the familiar Infof/Warningf/Errorf/Fatalf quartet, plus an
// AmbientContext that accumulates "log tags" (small key/value annotations
// like a table name or query id) and stamps them onto every message logged
// through a context it has annotated.
package log

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/logtags"
	"go.uber.org/zap"
)

var base = newBaseLogger()

func newBaseLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		// Logging setup failing is itself not loggable; fall back to a
		// no-op core rather than panic during package init.
		l = zap.NewNop()
	}
	return l.Sugar()
}

// Infof logs at info level, prefixing the message with ctx's log tags.
func Infof(ctx context.Context, format string, args ...interface{}) {
	base.Infof(MakeMessage(ctx, format, args))
}

// Warningf logs at warn level, prefixing the message with ctx's log tags.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	base.Warnf(MakeMessage(ctx, format, args))
}

// Errorf logs at error level, prefixing the message with ctx's log tags.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	base.Errorf(MakeMessage(ctx, format, args))
}

// Fatalf logs at fatal level and terminates the process, as zap's own
// Fatal does (it calls os.Exit(1) after flushing the sink).
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	base.Fatalf(MakeMessage(ctx, format, args))
}

// MakeMessage renders format/args (sprintf-style if args is non-empty,
// literal otherwise) prefixed by ctx's accumulated log tags in
// "[tag1,tag2] message" form, matching logtags' own Format convention.
func MakeMessage(ctx context.Context, format string, args []interface{}) string {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	tags := logtags.FromContext(ctx)
	if tags == nil || len(tags.Get()) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range tags.Get() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Key())
		if v := t.Value(); v != nil {
			fmt.Fprintf(&b, "%v", v)
		}
	}
	b.WriteString("] ")
	b.WriteString(msg)
	return b.String()
}

// AmbientContext carries a set of log tags to be stamped onto every
// context it annotates -- the table name a store operation is acting on,
// the query id a driver run is executing under, and so on. The zero value
// has no tags and AnnotateCtx is then a no-op passthrough.
type AmbientContext struct {
	tags *logtags.Buffer
}

// AddLogTag appends a key/value log tag, to be carried by every context
// this AmbientContext annotates from this point on.
func (ac *AmbientContext) AddLogTag(name string, value interface{}) {
	ac.tags = ac.tags.Add(name, value)
}

// AnnotateCtx returns ctx with this AmbientContext's log tags appended to
// whatever tags ctx already carries.
func (ac *AmbientContext) AnnotateCtx(ctx context.Context) context.Context {
	if ac.tags == nil {
		return ctx
	}
	return logtags.AddTags(ctx, ac.tags)
}

// ResetAndAnnotateCtx returns a fresh context carrying only this
// AmbientContext's tags, discarding any tags ctx already had.
func (ac *AmbientContext) ResetAndAnnotateCtx(ctx context.Context) context.Context {
	return logtags.WithTags(ctx, ac.tags)
}
