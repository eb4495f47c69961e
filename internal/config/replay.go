package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"commtester/internal/classify"
	"commtester/internal/errs"
)

// ReplayConfig is the parsed form of the replay runner's fixed positional
// argument list. Field order here mirrors the argument order, not any
// logical grouping.
type ReplayConfig struct {
	Repeated             int
	Speed                float64 // seconds between messages, per spec
	Redis                RedisConfig
	MessageFilePath       string
	Threads               int
	GroupMessageIntervals time.Duration
	TotalGroupMessage     int
	Requirement           string // "correctly" | "quickly"
	Profile               classify.Profile
}

// redisInfoJSON mirrors the JSON shape of the redis_info positional
// argument: {"ip": "...", "port": 6379, "password": "...", "db": 0}. It is
// parsed with strict JSON only — the original source evaluates this string
// with a textual eval, which a reimplementation must not reproduce.
type redisInfoJSON struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// ParseRedisInfo strictly JSON-decodes the redis_info positional argument.
func ParseRedisInfo(raw string) (RedisConfig, error) {
	var parsed redisInfoJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return RedisConfig{}, errs.Wrap(errs.ConfigError, "redis_info is not valid JSON", err)
	}
	if parsed.IP == "" {
		return RedisConfig{}, errs.New(errs.ConfigError, "redis_info missing ip")
	}
	return RedisConfig{
		Host:     parsed.IP,
		Port:     parsed.Port,
		Password: parsed.Password,
		DB:       parsed.DB,
	}, nil
}

// ParseReplayArgs parses the replay runner's fixed positional argument
// list: repeated, speed, redis_info, message_file_path, threads,
// group_message_intervals, total_group_message, requirement, orch_deploy.
//
// This is deliberately NOT a cobra flag set: the positional order is an
// external interface inherited from the original tool and changing it would
// break existing call sites.
func ParseReplayArgs(args []string) (ReplayConfig, error) {
	const argCount = 9
	if len(args) != argCount {
		return ReplayConfig{}, errs.New(errs.ConfigError, fmt.Sprintf(
			"expected %d positional arguments (repeated, speed, redis_info, message_file_path, "+
				"threads, group_message_intervals, total_group_message, requirement, orch_deploy), got %d",
			argCount, len(args)))
	}

	repeated, err := strconv.Atoi(args[0])
	if err != nil {
		return ReplayConfig{}, errs.Wrap(errs.ConfigError, "repeated", err)
	}
	speed, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return ReplayConfig{}, errs.Wrap(errs.ConfigError, "speed", err)
	}
	redisCfg, err := ParseRedisInfo(args[2])
	if err != nil {
		return ReplayConfig{}, err
	}
	messageFilePath := args[3]
	threads, err := strconv.Atoi(args[4])
	if err != nil {
		return ReplayConfig{}, errs.Wrap(errs.ConfigError, "threads", err)
	}
	groupIntervalSecs, err := strconv.ParseFloat(args[5], 64)
	if err != nil {
		return ReplayConfig{}, errs.Wrap(errs.ConfigError, "group_message_intervals", err)
	}
	totalGroupMessage, err := strconv.Atoi(args[6])
	if err != nil {
		return ReplayConfig{}, errs.Wrap(errs.ConfigError, "total_group_message", err)
	}
	requirement := args[7]
	if requirement != "correctly" && requirement != "quickly" {
		return ReplayConfig{}, errs.New(errs.ConfigError, fmt.Sprintf("requirement must be \"correctly\" or \"quickly\", got %q", requirement))
	}
	orchDeploy := args[8]
	profile := classify.Patch
	if strings.Contains(orchDeploy, "allInOne") {
		profile = classify.AllInOne
	}

	return ReplayConfig{
		Repeated:              repeated,
		Speed:                 speed,
		Redis:                 redisCfg,
		MessageFilePath:       messageFilePath,
		Threads:               threads,
		GroupMessageIntervals: time.Duration(groupIntervalSecs * float64(time.Second)),
		TotalGroupMessage:     totalGroupMessage,
		Requirement:           requirement,
		Profile:               profile,
	}, nil
}
