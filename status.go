package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/hako/durafmt"

	"gocomment/relay"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

var stateStyles = map[relay.State]color.Style{
	relay.Connected:    {color.FgGreen, color.OpBold},
	relay.Connecting:   {color.FgYellow},
	relay.Disconnected: {color.FgGray},
	relay.Failed:       {color.FgRed, color.OpBold},
}

func uptime(since time.Time) string {
	d := time.Since(since).Round(time.Second)
	if d < time.Second {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// statusLine summarises the connection and animation state. Colour codes
// are only added when colored is set.
func (a *app) statusLine(colored bool) string {
	st := a.relayState()
	label := tr(st.String())
	if colored {
		label = stateStyles[st].Sprint(label)
	}
	ss := a.sched.Stats()
	line := tr("status", label, a.session, ss.Active, a.router.Log().Len(), uptime(a.started))

	rs := a.router.Stats()
	return fmt.Sprintf("%s | spawned %s, evicted %s, duplicates %s, dropped %s",
		line,
		humanize.Comma(int64(ss.Spawned)),
		humanize.Comma(int64(ss.Evicted)),
		humanize.Comma(int64(rs.Duplicates)),
		humanize.Comma(int64(rs.Dropped)))
}
