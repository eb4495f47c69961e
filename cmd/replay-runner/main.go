// Command replay-runner is the Log-to-Wire Replay Engine's CLI front end.
// Its argument order is a fixed historical positional contract (see
// config.ParseReplayArgs) rather than cobra flags — changing it would break
// existing call sites.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"commtester/internal/config"
	"commtester/internal/pkg/logger"
	"commtester/internal/protobuf"
	"commtester/internal/queue"
	"commtester/internal/replay"
	"commtester/internal/sampler"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	replayCfg, err := config.ParseReplayArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	lm, err := logger.InitLogger(&config.LogConfig{Level: "info", Format: "text", Output: "stdout"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	log := logger.NewAdapter(lm)

	rawLines, err := readLines(replayCfg.MessageFilePath)
	if err != nil {
		log.Warnf("read message file: %v", err)
		return 1
	}

	corpus := replay.BuildCorpus(rawLines, nil)
	for _, skipErr := range corpus.Skipped {
		log.Warnf("skipped line: %v", skipErr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pub, err := queue.Connect(ctx, queue.Info{
		Host:     replayCfg.Redis.Host,
		Port:     replayCfg.Redis.Port,
		Password: replayCfg.Redis.Password,
		DB:       replayCfg.Redis.DB,
	})
	if err != nil {
		log.Warnf("redis connect: %v", err)
		return 1
	}
	defer pub.Close()

	groups, repeats := groupsAndRepeats(replayCfg)

	planner := replay.New(replay.Config{
		Workers:  replayCfg.Threads,
		Repeats:  repeats,
		Gap:      gapFor(replayCfg),
		Groups:   groups,
		GroupGap: replayCfg.GroupMessageIntervals,
		Profile:  replayCfg.Profile,
	}, protobuf.NewStandInOracle(), pub, log, sampler.New(log))

	counters := planner.Run(ctx, corpus)
	for i, c := range counters {
		log.Infof("worker %d done: config=%d stats=%d reply=%d", i, c.Config, c.Stats, c.Reply)
	}
	return 0
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := []string{}
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines, nil
}

// groupsAndRepeats turns the positional repeated/total_group_message pair
// into the planner's (groups, repeats-per-group) shape: total_group_message
// groups, each replaying the shard repeated times, so every line is sent
// groups*repeats times. A non-positive value for either is treated as 1.
func groupsAndRepeats(cfg config.ReplayConfig) (groups, repeats int) {
	groups = cfg.TotalGroupMessage
	if groups <= 0 {
		groups = 1
	}
	repeats = cfg.Repeated
	if repeats <= 0 {
		repeats = 1
	}
	return groups, repeats
}

// gapFor derives the per-message sleep directly from speed, which is
// already the gap in seconds, not a rate. requirement has no effect on
// pacing; it is accepted and validated but otherwise unused, matching the
// original tool where it never reaches the send loop.
func gapFor(cfg config.ReplayConfig) time.Duration {
	if cfg.Speed <= 0 {
		return 0
	}
	return time.Duration(cfg.Speed * float64(time.Second))
}
