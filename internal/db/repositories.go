package db

import "gorm.io/gorm"

type Repositories struct {
	Users                   *UserRepository
	CycleLogs               *CycleLogRepository
	Profiles                *ProfileRepository
	EmergencyContacts       *EmergencyContactRepository
	HealthcareProfessionals *HealthcareProfessionalRepository
	RiskAlerts              *RiskAlertRepository
	NotificationLogs        *NotificationLogRepository
	ChatMessages            *ChatMessageRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:                   NewUserRepository(database),
		CycleLogs:               NewCycleLogRepository(database),
		Profiles:                NewProfileRepository(database),
		EmergencyContacts:       NewEmergencyContactRepository(database),
		HealthcareProfessionals: NewHealthcareProfessionalRepository(database),
		RiskAlerts:              NewRiskAlertRepository(database),
		NotificationLogs:        NewNotificationLogRepository(database),
		ChatMessages:            NewChatMessageRepository(database),
	}
}
