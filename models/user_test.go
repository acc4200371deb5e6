package models

import (
	"testing"
	"time"
)

func TestSetAndCheckPassword(t *testing.T) {
	u := User{}
	if err := u.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if u.PasswordHash == "correct horse battery" {
		t.Error("Password stored in plaintext")
	}
	if !u.CheckPassword("correct horse battery") {
		t.Error("Expected matching password to verify")
	}
	if u.CheckPassword("wrong") {
		t.Error("Expected wrong password to fail")
	}
}

func TestIsPremiumActive(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	cases := []struct {
		name string
		user User
		want bool
	}{
		{"not premium", User{IsPremium: false}, false},
		{"premium without expiry", User{IsPremium: true}, true},
		{"premium with future expiry", User{IsPremium: true, PremiumExpiresAt: &future}, true},
		{"premium expired", User{IsPremium: true, PremiumExpiresAt: &past}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.user.IsPremiumActive(); got != c.want {
				t.Errorf("IsPremiumActive() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCanDownload(t *testing.T) {
	t.Run("premium is unlimited", func(t *testing.T) {
		u := User{IsPremium: true, DailyDownloadLimit: 1, DownloadsToday: 99, DownloadsResetAt: time.Now()}
		ok, _ := u.CanDownload()
		if !ok {
			t.Error("Expected premium user to bypass the daily limit")
		}
	})

	t.Run("zero limit is unlimited", func(t *testing.T) {
		u := User{DailyDownloadLimit: 0, DownloadsToday: 99, DownloadsResetAt: time.Now()}
		ok, _ := u.CanDownload()
		if !ok {
			t.Error("Expected zero limit to mean unlimited")
		}
	})

	t.Run("under the limit", func(t *testing.T) {
		u := User{DailyDownloadLimit: 10, DownloadsToday: 9, DownloadsResetAt: time.Now()}
		ok, _ := u.CanDownload()
		if !ok {
			t.Error("Expected download under the limit to pass")
		}
	})

	t.Run("at the limit", func(t *testing.T) {
		u := User{DailyDownloadLimit: 10, DownloadsToday: 10, DownloadsResetAt: time.Now()}
		ok, reason := u.CanDownload()
		if ok {
			t.Error("Expected download at the limit to be rejected")
		}
		if reason == "" {
			t.Error("Expected a rejection reason")
		}
	})

	t.Run("stale counter resets", func(t *testing.T) {
		u := User{
			DailyDownloadLimit: 10,
			DownloadsToday:     10,
			DownloadsResetAt:   time.Now().Add(-48 * time.Hour),
		}
		ok, _ := u.CanDownload()
		if !ok {
			t.Error("Expected yesterday's counter to be treated as reset")
		}
	})
}
