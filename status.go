package queueboard

import (
	"context"
	"time"
)

const (
	statusOnline   = "online"
	statusDegraded = "degraded"
)

type systemStatus struct {
	Status          string      `json:"status"`
	Time            time.Time   `json:"time"`
	Uptime          string      `json:"uptime"`
	GitHash         string      `json:"gitHash"`
	ApplicationName string      `json:"applicationName"`
	InstanceName    string      `json:"instanceName"`
	Environment     Environment `json:"environment"`

	Web    HTTP          `json:"web"`
	Redis  *redisStatus  `json:"redis,omitempty"`
	Queues []QueueConfig `json:"queues"`
}

type redisStatus struct {
	Redis
	Status string `json:"status"`
}

func getSystemStatus(ctx context.Context, di *Container, serverStartedAt time.Time) systemStatus {
	status := systemStatus{
		Status:          statusOnline,
		Time:            time.Now(),
		Uptime:          time.Since(serverStartedAt).Round(time.Second).String(),
		GitHash:         gitHash(),
		ApplicationName: di.Config.ApplicationName,
		InstanceName:    di.Config.InstanceName,
		Environment:     di.Config.Environment,
		Web:             di.Config.HTTP,
		Queues:          di.Config.Queues,
	}

	if di.Redis != nil {
		status.Redis = &redisStatus{Redis: di.Config.Redis, Status: statusOnline}

		if err := di.Redis.Ping(ctx).Err(); err != nil {
			status.Status = statusDegraded
			status.Redis.Status = "err: " + err.Error()
		}
	}

	return status
}
