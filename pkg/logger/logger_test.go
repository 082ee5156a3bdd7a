package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/logger"
)

// decode parses the single JSON record in buf.
func decode(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		DescribeTable("writes the record in every format",
			func(opts ...logger.Option) {
				var buf bytes.Buffer
				logger.New(append(opts, logger.WithWriter(&buf))...).Info("hello", "key", "value")

				Expect(buf.String()).To(ContainSubstring("hello"))
				Expect(buf.String()).To(ContainSubstring("key"))
				Expect(buf.String()).To(ContainSubstring("value"))
			},
			Entry("text"),
			Entry("json", logger.WithJSON(true)),
			Entry("pretty", logger.WithPretty(true)),
		)

		It("filters debug records unless enabled", func() {
			var quiet, verbose bytes.Buffer
			logger.New(logger.WithWriter(&quiet)).Debug("hidden")
			logger.New(logger.WithWriter(&verbose), logger.WithDebug(true)).Debug("shown")

			Expect(quiet.String()).To(BeEmpty())
			Expect(verbose.String()).To(ContainSubstring("shown"))
		})

		It("encodes attributes as JSON values", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).Info("structured", "count", 42)

			parsed := decode(&buf)
			Expect(parsed["msg"]).To(Equal("structured"))
			Expect(parsed["count"]).To(BeNumerically("==", 42))
		})

		It("writes to every writer", func() {
			var a, b bytes.Buffer
			logger.New(logger.WithWriters(&a, &b)).Info("multi")

			Expect(a.String()).To(ContainSubstring("multi"))
			Expect(b.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			h := logger.Nop().Handler()
			for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
				Expect(h.Enabled(context.Background(), level)).To(BeFalse())
			}
		})

		It("accepts derived loggers", func() {
			Expect(func() {
				logger.Nop().With("key", "value").WithGroup("group").Error("msg")
			}).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var a, b bytes.Buffer
			logger.Multi(
				logger.New(logger.WithWriter(&a)),
				logger.New(logger.WithWriter(&b)),
			).Info("broadcast", "key", "val")

			Expect(a.String()).To(ContainSubstring("broadcast"))
			Expect(b.String()).To(ContainSubstring("broadcast"))
		})

		It("carries With attributes to each logger", func() {
			var buf bytes.Buffer
			logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true))).
				With("request_id", "r1").Info("hello")

			Expect(decode(&buf)).To(HaveKeyWithValue("request_id", "r1"))
		})

		It("carries groups to each logger", func() {
			var buf bytes.Buffer
			logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true))).
				WithGroup("request").Info("processed", "method", "GET")

			Expect(decode(&buf)).To(HaveKeyWithValue("request", HaveKeyWithValue("method", "GET")))
		})
	})

	Describe("WithComponent", func() {
		It("tags every record", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithComponent("server"))
			l.With("request_id", "r1").Info("started")

			parsed := decode(&buf)
			Expect(parsed["component"]).To(Equal("server"))
			Expect(parsed["request_id"]).To(Equal("r1"))
			Expect(parsed["msg"]).To(Equal("started"))
		})

		It("adds nothing when unset", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).Info("started")

			Expect(decode(&buf)).NotTo(HaveKey("component"))
		})
	})

	Describe("WithTimestamp", func() {
		It("drops the time from pretty output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithTimestamp(false))
			l.Info("no clock")

			Expect(strings.TrimSpace(buf.String())).To(HavePrefix("INFO"))
		})
	})

	Describe("Multi errors", func() {
		It("keeps writing when one handler fails", func() {
			var buf bytes.Buffer
			broken := logger.New(logger.WithWriter(failingWriter{}), logger.WithJSON(true))
			ok := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))

			err := logger.Multi(broken, ok).Handler().Handle(context.Background(),
				slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))

			Expect(err).To(MatchError(ContainSubstring("write failed")))
			Expect(buf.String()).To(ContainSubstring("still here"))
		})

		It("skips nil loggers", func() {
			var buf bytes.Buffer
			logger.Multi(nil, logger.New(logger.WithWriter(&buf))).Info("hello")

			Expect(buf.String()).To(ContainSubstring("hello"))
		})
	})
})

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }
