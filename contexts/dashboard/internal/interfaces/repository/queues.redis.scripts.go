package repository

import "github.com/redis/go-redis/v9"

// Results of the scripts if the job could not be moved.
const (
	scriptJobMissing    = -1
	scriptJobWrongState = -2
)

// retryJobScript moves a failed job back to wait, or to paused if the queue is paused.
//
//	KEYS[1] failed, KEYS[2] wait, KEYS[3] paused, KEYS[4] meta-paused, KEYS[5] job hash
//	ARGV[1] job id
var retryJobScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[5]) == 0 then
  return -1
end

if redis.call("ZREM", KEYS[1], ARGV[1]) == 0 then
  return -2
end

redis.call("HDEL", KEYS[5], "finishedOn", "processedOn", "failedReason")

local target = KEYS[2]
if redis.call("EXISTS", KEYS[4]) == 1 then
  target = KEYS[3]
end

redis.call("LPUSH", target, ARGV[1])

return 0
`)

// promoteJobScript moves a delayed job to wait, or to paused if the queue is paused.
//
//	KEYS[1] delayed, KEYS[2] wait, KEYS[3] paused, KEYS[4] meta-paused, KEYS[5] job hash
//	ARGV[1] job id
var promoteJobScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[5]) == 0 then
  return -1
end

if redis.call("ZREM", KEYS[1], ARGV[1]) == 0 then
  return -2
end

redis.call("HSET", KEYS[5], "delay", 0)

local target = KEYS[2]
if redis.call("EXISTS", KEYS[4]) == 1 then
  target = KEYS[3]
end

redis.call("LPUSH", target, ARGV[1])

return 0
`)
