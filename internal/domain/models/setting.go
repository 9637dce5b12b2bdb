package models

// ключи настроек сайта, которые можно менять из админки
const (
	SettingSiteName      = "site_name"
	SettingAnnouncement  = "announcement"
	SettingContact       = "contact"
	SettingFooter        = "footer"
	SettingPaymentNotice = "payment_notice"
)

var SiteSettingKeys = []string{
	SettingSiteName,
	SettingAnnouncement,
	SettingContact,
	SettingFooter,
	SettingPaymentNotice,
}

// SiteSettings - набор настроек, загружаемый заново на каждый запрос
type SiteSettings map[string]string

func (s SiteSettings) Get(key string) string {
	if s == nil {
		return ""
	}
	return s[key]
}

func IsSiteSettingKey(key string) bool {
	for _, k := range SiteSettingKeys {
		if k == key {
			return true
		}
	}
	return false
}
