package config

import "time"

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type NotifierType string

const NOTIFIER_TYPE_REDIS NotifierType = "redis"
const NOTIFIER_TYPE_NOOP NotifierType = "noop"

type Config struct {
	RedisConfig          RedisStorageConfig
	HttpPort             int
	StorageType          StorageType
	NotifierType         NotifierType
	ErpConfig            ErpConfig
	ClosureQueueCapacity int
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}

// ErpConfig configures the outbound back-office boundary. Every call carries
// the bearer token and is bounded by the matching timeout.
type ErpConfig struct {
	BaseUrl         string
	AuthToken       string
	ReadTimeout     time.Duration
	RegisterTimeout time.Duration
}
