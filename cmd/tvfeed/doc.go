// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Tvfeed builds a daily TV schedule digest and delivers it via Telegram.

It fetches the day's broadcast schedule for a country and the schedule of web
channels from TVmaze, normalizes and filters the entries, groups them by
network and renders a digest.

# Usage

	$ tvfeed [flags...]

By default tvfeed prints the digest for today to standard output; -json
switches the output to JSON. With -notify it delivers the digest to a
Telegram chat instead. With -serve it runs as a server that exposes the
current digest over HTTP and delivers it to Telegram every day at the
configured notification time.

# Configuration

tvfeed reads a JSON config file from $XDG_CONFIG_HOME/tvfeed/config.json,
overridable with the -config flag or the TVFEED_CONFIG environment variable:

	{
	    "country": "US",
	    "timezone": "America/New_York",
	    "types": ["Scripted", "Reality"],
	    "networks": [],
	    "genres": [],
	    "languages": ["English"],
	    "minAirtime": "18:00",
	    "notificationTime": "09:00",
	    "showNameFilter": ["^The Young", "Shopping"],
	    "rules": "rules.star",
	    "telegram": {"token": "...", "chatID": "..."},
	    "contact": "@someone"
	}

Every key is optional. The filter lists combine: a show must match all of
them to stay in the digest. showNameFilter entries are case-insensitive
regular expressions matched against show names; an entry that doesn't
compile is used as a literal substring instead. Matching shows are dropped.

The tvfeed program also understands the following environment variables:

  - TELEGRAM_TOKEN: Telegram bot token for accessing the Telegram Bot API.
  - TVFEED_CHAT_ID: Telegram chat ID where the program sends the digest.
  - TVFEED_COUNTRY: country of the broadcast schedule (ISO 3166-1 code).
  - TVFEED_TIMEZONE: IANA timezone used to compute the current date.
  - TVFEED_MIN_AIRTIME: minimum airtime threshold (HH:MM).
  - TVFEED_NOTIFICATION_TIME: daily delivery time in -serve mode (HH:MM).
  - TVFEED_CONFIG: path of the config file.
  - TVFEED_RULES: path of the Starlark rules file.

Environment variables override the config file, flags override both.

# Filter rules

A Starlark rules file can define keep_show and block_show functions that
take a show as an argument and return a boolean value. If block_show returns
true, the show is dropped from the digest. If keep_show returns false, the
show is dropped too. For example:

	def block_show(show):
	    return show.network == "TLC"

	def keep_show(show):
	    return show.type == "Scripted" or "Documentary" in show.genres

The show passed to both functions is a struct with the following fields:
id, name, type, language, genres, network, summary, airtime, season and
number.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/tvfeed/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
