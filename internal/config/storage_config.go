package config

type StorageConfig interface {
	GetStoreDriver() string
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisDB() int
}

const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
)

type Storage struct {
	s *settings
}

var _ StorageConfig = Storage{}

func (s Storage) GetStoreDriver() string {
	return s.s.StoreDriver
}

func (s Storage) GetSQLitePath() string {
	return s.s.SQLitePath
}

func (s Storage) GetRedisAddr() string {
	return s.s.RedisAddr
}

func (s Storage) GetRedisDB() int {
	return s.s.RedisDB
}
