package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

func testFrame(t float64, deg float64) sim.Frame {
	return sim.Frame{
		Time:       t,
		Mode:       swerve.ModeTracking,
		Desired:    kinematics.NewModuleState(1.0, geometry.FromDegrees(deg)),
		Optimized:  kinematics.NewModuleState(1.0, geometry.FromDegrees(deg)),
		Measured:   kinematics.NewModuleState(0.9, geometry.FromDegrees(deg-1)),
		DriveVolts: 2.5,
		TurnVolts:  0.07,
	}
}

func TestHubKeepsLatestPerModule(t *testing.T) {
	g := NewWithT(t)
	h := NewHub(nil)

	h.Feed("front_left").OnFrame(testFrame(0, 10))
	h.Feed("front_left").OnFrame(testFrame(0.02, 20))
	h.Feed("back_right").OnFrame(testFrame(0.02, 30))

	snaps := h.Snapshots()
	g.Expect(snaps).To(HaveLen(2))
	g.Expect(snaps[0].Module).To(Equal("back_right"))
	g.Expect(snaps[1].Module).To(Equal("front_left"))
	g.Expect(snaps[1].OptimizedAngle).To(BeNumerically("~", 20, 1e-9))
	g.Expect(snaps[1].Mode).To(Equal("tracking"))
}

func TestModulesAPI(t *testing.T) {
	g := NewWithT(t)
	h := NewHub(nil)
	h.Publish("front_left", testFrame(0.5, 45))

	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/modules")
	g.Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	g.Expect(resp.StatusCode).To(Equal(http.StatusOK))

	var snaps []Snapshot
	g.Expect(json.NewDecoder(resp.Body).Decode(&snaps)).To(Succeed())
	g.Expect(snaps).To(HaveLen(1))
	g.Expect(snaps[0].Time).To(Equal(0.5))

	one, err := http.Get(srv.URL + "/api/modules/front_left")
	g.Expect(err).NotTo(HaveOccurred())
	defer one.Body.Close()
	var snap Snapshot
	g.Expect(json.NewDecoder(one.Body).Decode(&snap)).To(Succeed())
	g.Expect(snap.DriveVolts).To(Equal(2.5))

	missing, err := http.Get(srv.URL + "/api/modules/nope")
	g.Expect(err).NotTo(HaveOccurred())
	defer missing.Body.Close()
	g.Expect(missing.StatusCode).To(Equal(http.StatusNotFound))
}

func TestWebsocketDeliversSnapshots(t *testing.T) {
	g := NewWithT(t)
	h := NewHub(nil)
	h.Publish("front_left", testFrame(0, 10))

	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	g.Expect(err).NotTo(HaveOccurred())
	defer conn.Close()

	read := func() Message {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var m Message
		g.Expect(conn.ReadJSON(&m)).To(Succeed())
		return m
	}

	hello := read()
	g.Expect(hello.Type).To(Equal("hello"))
	g.Expect(hello.Snapshots).To(HaveLen(1))
	g.Expect(h.Clients()).To(Equal(1))

	h.Publish("front_left", testFrame(0.02, 15))
	msg := read()
	g.Expect(msg.Type).To(Equal("frame"))
	g.Expect(msg.Snapshots).To(HaveLen(1))
	g.Expect(msg.Snapshots[0].OptimizedAngle).To(BeNumerically("~", 15, 1e-9))

	conn.Close()
	g.Eventually(h.Clients, 2*time.Second, 10*time.Millisecond).Should(BeZero())
}

type recordingConn struct {
	calls     []string
	deadline  time.Time
	failWrite error
}

func (c *recordingConn) SetWriteDeadline(t time.Time) error {
	c.calls = append(c.calls, "deadline")
	c.deadline = t
	return nil
}

func (c *recordingConn) WriteMessage(messageType int, data []byte) error {
	c.calls = append(c.calls, "write")
	return c.failWrite
}

func TestWriteFrameSetsDeadlineFirst(t *testing.T) {
	g := NewWithT(t)
	c := &recordingConn{}

	before := time.Now()
	g.Expect(writeFrame(c, websocket.TextMessage, []byte("{}"))).To(Succeed())
	g.Expect(writeFrame(c, websocket.PingMessage, nil)).To(Succeed())

	g.Expect(c.calls).To(Equal([]string{"deadline", "write", "deadline", "write"}))
	g.Expect(c.deadline).To(BeTemporally(">=", before.Add(writeWait)))
	g.Expect(c.deadline).To(BeTemporally("<=", time.Now().Add(writeWait)))

	c.failWrite = websocket.ErrCloseSent
	g.Expect(writeFrame(c, websocket.TextMessage, nil)).To(MatchError(websocket.ErrCloseSent))
}
