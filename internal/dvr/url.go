package dvr

import (
	"fmt"
	"net"
	"net/url"
)

// rtspPort는 Intelbras/Dahua DVR의 고정 RTSP 포트
const rtspPort = 554

// StreamURL은 채널 하나에 대한 RTSP 연결 URL을 생성합니다.
// 자격 증명은 userinfo 규칙(공백은 %20)으로 percent-encode 되어 URL에 포함됩니다.
// 형식: rtsp://user:pass@ip:554/cam/realmonitor?channel=N&subtype=S
func StreamURL(ip, user, password string, channel, subtype int) string {
	u := url.URL{
		Scheme:   "rtsp",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", ip, rtspPort),
		Path:     "/cam/realmonitor",
		RawQuery: fmt.Sprintf("channel=%d&subtype=%d", channel, subtype),
	}
	return u.String()
}

// MaskURL은 로그 출력용으로 비밀번호를 마스킹한 URL을 반환합니다
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}

	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}

	return u.String()
}

// LANIP는 이 장비의 LAN IP를 탐색합니다.
// UDP 소켓을 probeHost로 연결해 보고 로컬 주소를 읽습니다 (실제 패킷 전송 없음).
// 실패하면 fallback을 반환합니다.
func LANIP(probeHost, fallback string) string {
	if probeHost == "" {
		probeHost = "8.8.8.8"
	}

	conn, err := net.Dial("udp", net.JoinHostPort(probeHost, "80"))
	if err != nil {
		return fallback
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return fallback
	}

	return addr.IP.String()
}
