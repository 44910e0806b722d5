// Package feed turns a pull-only entity store into change notifications.
//
// Subscribe polls a Fetcher on a fixed interval and invokes a callback only
// when the fetched set differs from the last one delivered, comparing with
// Equal (order independent, value level). The first result is delivered
// before Subscribe returns.
//
// The same behaviour is available as channels: Stream is the cancellable
// periodic fetch, Distinct is the deduplication stage, and Watch composes
// the two. Cancelling the context closes every stage and drops any set not
// yet received. The dashboard's alert notifier consumes Watch.
//
//	unsubscribe := feed.Subscribe(ctx, repo.Sensors, board.SetSensors,
//		feed.WithInterval(cfg.Feed.PollInterval),
//		feed.WithName("Sensor"),
//		feed.WithLogger(log),
//	)
//	defer unsubscribe()
//
// Each subscription polls independently; N subscribers to one type issue N
// request streams.
package feed
