package db

import (
	"testing"

	"github.com/souqapp/classifieds-backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			"plain host",
			config.Config{DBUser: "u", DBPassword: "p", DBHost: "db.local", DBPort: "3306", DBName: "souq"},
			"u:p@tcp(db.local:3306)/souq?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			"explicit tcp",
			config.Config{DBUser: "u", DBPassword: "p", DBHost: "tcp(db:3307)", DBName: "souq"},
			"u:p@tcp(db:3307)/souq?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			"unix socket path",
			config.Config{DBUser: "u", DBPassword: "p", DBHost: "/var/run/mysqld.sock", DBName: "souq"},
			"u:p@unix(/var/run/mysqld.sock)/souq?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			"cloud sql instance wins",
			config.Config{DBUser: "u", DBPassword: "p", DBHost: "ignored", DBName: "souq", InstanceConnectionName: "proj:region:inst"},
			"u:p@unix(/cloudsql/proj:region:inst)/souq?charset=utf8mb4&parseTime=True&loc=Local",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDSN(&tt.cfg); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}
