package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/schedulink/schedulink/core"
	"github.com/schedulink/schedulink/storage/database"
	sqlxrepos "github.com/schedulink/schedulink/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	sqlDB, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = sqlDB.Close() }()
	errAndDie(sqlDB.Ping())
	db := sqlx.NewDb(sqlDB, conf.Database.Engine)

	// start CLI
	cli := commandLine{
		db:      sqlDB,
		usrRepo: sqlxrepos.NewUserRepository(db),
		resRepo: sqlxrepos.NewResourceRepository(db),
		evRepo:  sqlxrepos.NewEventRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
