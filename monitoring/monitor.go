// Package monitoring serves the state of a running cache simulation over
// HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim/hooking"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor can turn a simulation into a server and allows external
// monitoring of the simulation. It is a hook of the cache simulator and keeps
// a copy of the latest counters, so that the server never touches the
// simulator itself.
type Monitor struct {
	portNumber int
	server     *http.Server

	stateLock sync.Mutex
	config    cache.Config
	stats     cache.Stats
	lastSeq   uint64

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

const minPortNumber = 1000

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < minPortNumber {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSimulator starts following a simulator.
func (m *Monitor) RegisterSimulator(s *cache.Simulator) {
	m.stateLock.Lock()
	m.config = s.Config()
	m.stats = s.Stats()
	m.stateLock.Unlock()

	s.AcceptHook(m)
}

// Func copies the counters after every access.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	s := ctx.Item.(*cache.Simulator)
	detail := ctx.Detail.(cache.AccessDetail)

	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	m.stats = s.Stats()
	m.lastSeq = detail.Seq
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes that the monitor serves.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", m.listStats).Methods(http.MethodGet)
	r.HandleFunc("/api/config", m.listConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/simulator", m.serializeSimulator).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", m.listenAddress())
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("monitor server stopped: %v", err)
		}
	}()

	return url, nil
}

func (m *Monitor) listenAddress() string {
	if m.portNumber >= minPortNumber {
		return ":" + strconv.Itoa(m.portNumber)
	}

	return ":0"
}

// StopServer shuts the server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

// OpenBrowser opens the monitor page in the default browser.
func (m *Monitor) OpenBrowser(url string) error {
	return browser.OpenURL(url + "/api/stats")
}

type statsRsp struct {
	cache.Stats
	Accesses uint64  `json:"accesses"`
	HitRate  float64 `json:"hit_rate"`
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.Lock()
	stats := m.stats
	m.stateLock.Unlock()

	writeJSON(w, statsRsp{
		Stats:    stats,
		Accesses: stats.Accesses(),
		HitRate:  stats.HitRate(),
	})
}

type configRsp struct {
	cache.Config
	NumSets       int    `json:"num_sets"`
	BlockSize     uint64 `json:"block_size"`
	TotalByteSize uint64 `json:"total_byte_size"`
}

func (m *Monitor) listConfig(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.Lock()
	config := m.config
	m.stateLock.Unlock()

	writeJSON(w, configRsp{
		Config:        config,
		NumSets:       config.NumSets(),
		BlockSize:     config.BlockSize(),
		TotalByteSize: config.TotalByteSize(),
	})
}

type simulatorState struct {
	Config   cache.Config
	Stats    cache.Stats
	Accesses uint64
}

func (m *Monitor) serializeSimulator(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.Lock()
	state := &simulatorState{
		Config:   m.config,
		Stats:    m.stats,
		Accesses: m.lastSeq,
	}
	m.stateLock.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(2)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
