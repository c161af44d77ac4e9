package dto

import (
	"time"

	"hotelrates/internal/domain/siteconfig"
)

type NavEntry struct {
	Key     string `json:"key" toml:"key"`
	Label   string `json:"label" toml:"label"`
	Path    string `json:"path" toml:"path"`
	Visible bool   `json:"visible" toml:"visible"`
}

type Contact struct {
	Phone   string `json:"phone" toml:"phone"`
	Email   string `json:"email" toml:"email"`
	Address string `json:"address" toml:"address"`
}

type SiteConfig struct {
	HotelName    string     `json:"hotel_name" toml:"hotel_name"`
	Tagline      string     `json:"tagline" toml:"tagline"`
	Currency     string     `json:"currency" toml:"currency"`
	CheckInTime  string     `json:"check_in_time" toml:"check_in_time"`
	CheckOutTime string     `json:"check_out_time" toml:"check_out_time"`
	Contact      Contact    `json:"contact" toml:"contact"`
	Navigation   []NavEntry `json:"navigation" toml:"navigation"`
	UpdatedAt    time.Time  `json:"updated_at" toml:"updated_at"`
}

func MapSiteConfig(c siteconfig.Config) SiteConfig {
	nav := make([]NavEntry, 0, len(c.Navigation))
	for _, e := range c.Navigation {
		nav = append(nav, NavEntry(e))
	}
	return SiteConfig{
		HotelName:    c.HotelName,
		Tagline:      c.Tagline,
		Currency:     c.Currency,
		CheckInTime:  c.CheckInTime,
		CheckOutTime: c.CheckOutTime,
		Contact:      Contact(c.Contact),
		Navigation:   nav,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (s SiteConfig) ToDomain() siteconfig.Config {
	nav := make([]siteconfig.NavEntry, 0, len(s.Navigation))
	for _, e := range s.Navigation {
		nav = append(nav, siteconfig.NavEntry(e))
	}
	return siteconfig.Config{
		HotelName:    s.HotelName,
		Tagline:      s.Tagline,
		Currency:     s.Currency,
		CheckInTime:  s.CheckInTime,
		CheckOutTime: s.CheckOutTime,
		Contact:      siteconfig.Contact(s.Contact),
		Navigation:   nav,
		UpdatedAt:    s.UpdatedAt,
	}
}
