package models

type ConfigFile struct {
	LogLevel             string
	LogToFile            bool
	JwtSecret            string
	SnowflakeWorkerID    int64
	SessionLifetimeHours int
	DefaultVoiceCapacity int
	TextHistoryDisplay   int
	VoiceHistoryDisplay  int
}
