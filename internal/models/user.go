package models

import "time"

// User: Kiracı bölümleme sınırı. Motorun bütün kayıtları (tedarik, tarif,
// yetiştirme, kuyruk, denetim) tek bir kullanıcıya aittir.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
