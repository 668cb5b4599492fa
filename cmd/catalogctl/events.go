package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apploan "github.com/xiebiao/library-catalog/internal/application/loan"
	"github.com/xiebiao/library-catalog/pkg/mq"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var (
		keys  []string
		queue string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "订阅并打印副本状态事件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, mq.ExchangeTopic, queue, keys)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "订阅 %s %v，按Ctrl+C退出\n", cfg.MQ.Exchange, keys)
			err = consumer.Consume(ctx, func(d mq.Delivery) error {
				return printEvent(cmd.OutOrStdout(), d)
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&keys, "keys", []string{apploan.EventPrefix + "#"}, "绑定的routing key")
	cmd.Flags().StringVar(&queue, "queue", "", "队列名(为空时使用临时队列)")
	return cmd
}

// loanEnvelope 与mq.Event对应，Payload按副本事件解析
type loanEnvelope struct {
	Type    string        `json:"type"`
	Payload apploan.Event `json:"payload"`
}

// printEvent 一行一个事件，无法解析的消息原样输出
func printEvent(w io.Writer, d mq.Delivery) error {
	var env loanEnvelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		_, err = fmt.Fprintf(w, "%s %s %s\n", d.Timestamp.Format("2006-01-02 15:04:05"), d.RoutingKey, d.Body)
		return err
	}

	e := env.Payload
	line := fmt.Sprintf("%s %s instance=%s book=%d %s→%s",
		d.Timestamp.Format("2006-01-02 15:04:05"), d.RoutingKey, e.InstanceID, e.BookID, e.From, e.To)
	if e.BorrowerID != nil {
		line += fmt.Sprintf(" borrower=%d", *e.BorrowerID)
	}
	if e.ActorID != 0 {
		line += fmt.Sprintf(" actor=%d", e.ActorID)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
