// hfsim dials the gateway and plays the HF side of an HFP service level
// connection: it runs the SLC handshake with configurable features, then
// executes a scripted command sequence and prints unsolicited traffic.
// It is a manual conformance tool, not part of the server.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lanwave/hfp-ag/internal/hfp"
)

var defaultFeatures = hfp.HfFeatureThreeWayCalling |
	hfp.HfFeatureCliPresentation |
	hfp.HfFeatureRemoteVolumeControl |
	hfp.HfFeatureEnhancedCallStatus |
	hfp.HfFeatureCodecNegotiation |
	hfp.HfFeatureHfIndicators

func main() {
	addr := flag.String("addr", "127.0.0.1:7000", "gateway address")
	features := flag.Uint("features", uint(defaultFeatures), "HF feature bitmap for AT+BRSF")
	codecs := flag.String("codecs", "1,2", "codec IDs for AT+BAC (1=CVSD, 2=mSBC)")
	hfInd := flag.String("hf-indicators", "1,2", "HF indicator IDs for AT+BIND")
	script := flag.String("script", "", "space separated commands to run after SLC (e.g. \"dial:5551234 wait:3s hangup\")")
	listen := flag.Duration("listen", 0, "keep printing unsolicited traffic for this long after the script")
	timeout := flag.Duration("timeout", 5*time.Second, "per-command response timeout")
	cmee := flag.Bool("cmee", true, "enable extended error codes after SLC")
	autoBCS := flag.Bool("auto-bcs", true, "confirm +BCS codec proposals with AT+BCS")
	flag.Parse()

	logger := log.New(os.Stdout, "[hfsim] ", log.LstdFlags|log.Lmicroseconds)

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		logger.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()
	logger.Printf("connected to %s", *addr)

	c := &client{
		conn:    conn,
		lines:   make(chan string, 64),
		readErr: make(chan error, 1),
		logger:  logger,
		timeout: *timeout,
		autoBCS: *autoBCS,
	}
	go c.readLoop()

	hf := hfp.HfFeatures(*features)
	ag, err := c.handshake(hf, *codecs, *hfInd)
	if err != nil {
		logger.Fatalf("SLC handshake failed: %v", err)
	}
	logger.Printf("SLC established, ag_features=0x%X", uint32(ag))

	if *cmee {
		if _, err := c.send("AT+CMEE=1"); err != nil {
			logger.Fatalf("AT+CMEE failed: %v", err)
		}
	}

	for _, tok := range strings.Fields(*script) {
		if d, ok := parseWait(tok); ok {
			c.waitFor(d)
			continue
		}
		cmd, err := expand(tok)
		if err != nil {
			logger.Fatalf("bad script token %q: %v", tok, err)
		}
		if _, err := c.send(cmd); err != nil {
			logger.Printf("command %q: %v", cmd, err)
		}
	}

	if *listen > 0 {
		logger.Printf("listening for %s...", *listen)
		c.waitFor(*listen)
	}
	logger.Println("done")
}

type client struct {
	conn    net.Conn
	lines   chan string
	readErr chan error
	logger  *log.Logger
	timeout time.Duration
	autoBCS bool
}

// readLoop splits the AG byte stream into lines. Responses are framed
// as <cr><lf>TEXT<cr><lf>, so empty lines are dropped.
func (c *client) readLoop() {
	sc := bufio.NewScanner(c.conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		c.lines <- line
	}
	if err := sc.Err(); err != nil {
		c.readErr <- err
		return
	}
	c.readErr <- fmt.Errorf("connection closed by gateway")
}

// send writes one AT command and consumes lines until a final result code.
// Intermediate response lines are returned in order.
func (c *client) send(cmd string) ([]string, error) {
	c.logger.Printf(">> %s", cmd)
	if _, err := c.conn.Write([]byte(cmd + "\r")); err != nil {
		return nil, err
	}
	var body []string
	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	for {
		select {
		case line := <-c.lines:
			c.logger.Printf("<< %s", line)
			switch {
			case line == "OK":
				return body, nil
			case line == "ERROR":
				return body, fmt.Errorf("ERROR")
			case strings.HasPrefix(line, "+CME ERROR:"):
				return body, fmt.Errorf("%s", line)
			default:
				body = append(body, line)
			}
		case err := <-c.readErr:
			return body, err
		case <-deadline.C:
			return body, fmt.Errorf("timeout waiting for reply to %s", cmd)
		}
	}
}

// handshake runs the SLC establishment sequence (HFP v1.8 §4.2.1).
func (c *client) handshake(hf hfp.HfFeatures, codecs, hfInd string) (hfp.AgFeatures, error) {
	body, err := c.send(fmt.Sprintf("AT+BRSF=%d", uint32(hf)))
	if err != nil {
		return 0, err
	}
	ag, err := parseBrsf(body)
	if err != nil {
		return 0, err
	}

	if hf.Has(hfp.HfFeatureCodecNegotiation) && ag.Has(hfp.AgFeatureCodecNegotiation) {
		if _, err := c.send("AT+BAC=" + codecs); err != nil {
			return ag, err
		}
	}
	if _, err := c.send("AT+CIND=?"); err != nil {
		return ag, err
	}
	if _, err := c.send("AT+CIND?"); err != nil {
		return ag, err
	}
	if _, err := c.send("AT+CMER=3,0,0,1"); err != nil {
		return ag, err
	}
	if hf.Has(hfp.HfFeatureThreeWayCalling) && ag.Has(hfp.AgFeatureThreeWayCalling) {
		if _, err := c.send("AT+CHLD=?"); err != nil {
			return ag, err
		}
	}
	if hf.Has(hfp.HfFeatureHfIndicators) && ag.Has(hfp.AgFeatureHfIndicators) {
		if _, err := c.send("AT+BIND=" + hfInd); err != nil {
			return ag, err
		}
		if _, err := c.send("AT+BIND=?"); err != nil {
			return ag, err
		}
		if _, err := c.send("AT+BIND?"); err != nil {
			return ag, err
		}
	}
	return ag, nil
}

func parseBrsf(body []string) (hfp.AgFeatures, error) {
	for _, line := range body {
		rest, ok := strings.CutPrefix(line, "+BRSF:")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad +BRSF payload %q: %w", line, err)
		}
		return hfp.AgFeatures(n), nil
	}
	return 0, fmt.Errorf("no +BRSF in reply: %v", body)
}

// waitFor prints unsolicited traffic for d. Codec proposals are confirmed
// inline when auto-bcs is on; the trailing OK of that confirm is printed
// by the same loop.
func (c *client) waitFor(d time.Duration) {
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	for {
		select {
		case line := <-c.lines:
			c.logger.Printf("<< %s", line)
			if c.autoBCS {
				if rest, ok := strings.CutPrefix(line, "+BCS:"); ok {
					confirm := "AT+BCS=" + strings.TrimSpace(rest)
					c.logger.Printf(">> %s", confirm)
					if _, err := c.conn.Write([]byte(confirm + "\r")); err != nil {
						c.logger.Printf("codec confirm: %v", err)
					}
				}
			}
		case err := <-c.readErr:
			c.logger.Printf("read: %v", err)
			return
		case <-deadline.C:
			return
		}
	}
}

func parseWait(tok string) (time.Duration, bool) {
	rest, ok := strings.CutPrefix(tok, "wait:")
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(rest)
	if err != nil {
		return 0, false
	}
	return d, true
}

// expand maps script shortcuts onto AT commands. Raw commands starting
// with "AT" pass through untouched.
func expand(tok string) (string, error) {
	if strings.HasPrefix(tok, "AT") {
		return tok, nil
	}
	name, arg, _ := strings.Cut(tok, ":")
	switch name {
	case "dial":
		if arg == "" {
			return "", fmt.Errorf("dial needs a number")
		}
		return "ATD" + arg + ";", nil
	case "memory":
		if arg == "" {
			return "", fmt.Errorf("memory needs a slot")
		}
		return "ATD>" + arg + ";", nil
	case "redial":
		return "AT+BLDN", nil
	case "answer":
		return "ATA", nil
	case "hangup":
		return "AT+CHUP", nil
	case "dtmf":
		if arg == "" {
			return "", fmt.Errorf("dtmf needs a digit")
		}
		return "AT+VTS=" + arg, nil
	case "chld":
		if arg == "" {
			return "", fmt.Errorf("chld needs an operation")
		}
		return "AT+CHLD=" + arg, nil
	case "vgs":
		return "AT+VGS=" + arg, nil
	case "vgm":
		return "AT+VGM=" + arg, nil
	case "cind":
		return "AT+CIND?", nil
	case "cops":
		return "AT+COPS?", nil
	case "cnum":
		return "AT+CNUM", nil
	case "clip":
		return "AT+CLIP=" + orDefault(arg, "1"), nil
	case "ccwa":
		return "AT+CCWA=" + orDefault(arg, "1"), nil
	case "nrec":
		return "AT+NREC=" + orDefault(arg, "0"), nil
	case "bia":
		return "AT+BIA=" + arg, nil
	case "biev":
		return "AT+BIEV=" + arg, nil
	default:
		return "", fmt.Errorf("unknown command")
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
