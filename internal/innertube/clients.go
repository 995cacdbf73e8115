package innertube

const (
	defaultHost     = "www.youtube.com"
	musicHost       = "music.youtube.com"
	preferredLocale = "en"

	// Any valid URL is accepted as the embed referrer.
	defaultEmbedURL = "https://www.youtube.com/"
)

// webGvsPolicies is the GVS policy set shared by the browser-based clients:
// media URLs want a PO token unless the account has premium.
func webGvsPolicies() map[VideoStreamingProtocol]GvsPoTokenPolicy {
	return map[VideoStreamingProtocol]GvsPoTokenPolicy{
		StreamingProtocolHTTPS: {Required: true, Recommended: true, NotRequiredForPremium: true},
		StreamingProtocolDASH:  {Required: true, Recommended: true, NotRequiredForPremium: true},
		StreamingProtocolHLS:   {Recommended: true},
	}
}

func defaultGvsPolicies() map[VideoStreamingProtocol]GvsPoTokenPolicy {
	return map[VideoStreamingProtocol]GvsPoTokenPolicy{
		StreamingProtocolHTTPS: {},
		StreamingProtocolDASH:  {},
		StreamingProtocolHLS:   {},
	}
}

func buildClientTable() map[ClientID]ClientProfile {
	table := map[ClientID]ClientProfile{
		ClientWeb: {
			Name:             "WEB",
			Version:          "2.20250925.01.00",
			Host:             defaultHost,
			ContextNameID:    1,
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			GvsPoTokenPolicy: webGvsPolicies(),
		},
		ClientWebSafari: {
			Name:             "WEB",
			Version:          "2.20250925.01.00",
			Host:             defaultHost,
			ContextNameID:    1,
			UserAgent:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.5 Safari/605.1.15,gzip(gfe)",
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			GvsPoTokenPolicy: webGvsPolicies(),
		},
		ClientWebEmbedded: {
			Name:             "WEB_EMBEDDED_PLAYER",
			Version:          "1.20250923.21.00",
			Host:             defaultHost,
			ContextNameID:    56,
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			GvsPoTokenPolicy: webGvsPolicies(),
		},
		ClientWebMusic: {
			Name:             "WEB_REMIX",
			Version:          "1.20250922.03.00",
			Host:             musicHost,
			ContextNameID:    67,
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			GvsPoTokenPolicy: webGvsPolicies(),
		},
		ClientWebCreator: {
			Name:             "WEB_CREATOR",
			Version:          "1.20250922.03.00",
			Host:             defaultHost,
			ContextNameID:    62,
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			RequireAuth:      true,
			GvsPoTokenPolicy: webGvsPolicies(),
		},
		ClientAndroid: {
			Name:              "ANDROID",
			Version:           "20.10.38",
			Host:              defaultHost,
			ContextNameID:     3,
			UserAgent:         "com.google.android.youtube/20.10.38 (Linux; U; Android 11) gzip",
			OsName:            "Android",
			OsVersion:         "11",
			AndroidSDKVersion: 30,
			GvsPoTokenPolicy: map[VideoStreamingProtocol]GvsPoTokenPolicy{
				StreamingProtocolHTTPS: {Required: true, Recommended: true, NotRequiredWithPlayerToken: true},
				StreamingProtocolDASH:  {Required: true, Recommended: true, NotRequiredWithPlayerToken: true},
				StreamingProtocolHLS:   {Recommended: true, NotRequiredWithPlayerToken: true},
			},
			PlayerPoTokenPolicy: PlayerPoTokenPolicy{Recommended: true},
		},
		ClientAndroidSdkless: {
			Name:             "ANDROID",
			Version:          "20.10.38",
			Host:             defaultHost,
			ContextNameID:    3,
			UserAgent:        "com.google.android.youtube/20.10.38 (Linux; U; Android 11) gzip",
			OsName:           "Android",
			OsVersion:        "11",
			GvsPoTokenPolicy: defaultGvsPolicies(),
		},
		ClientAndroidVR: {
			Name:              "ANDROID_VR",
			Version:           "1.65.10",
			Host:              defaultHost,
			ContextNameID:     28,
			UserAgent:         "com.google.android.apps.youtube.vr.oculus/1.65.10 (Linux; U; Android 12L; eureka-user Build/SQ3A.220605.009.A1) gzip",
			DeviceMake:        "Oculus",
			DeviceModel:       "Quest 3",
			OsName:            "Android",
			OsVersion:         "12L",
			AndroidSDKVersion: 32,
			GvsPoTokenPolicy:  defaultGvsPolicies(),
		},
		ClientIOS: {
			Name:          "IOS",
			Version:       "20.10.4",
			Host:          defaultHost,
			ContextNameID: 5,
			UserAgent:     "com.google.ios.youtube/20.10.4 (iPhone16,2; U; CPU iOS 18_3_2 like Mac OS X;)",
			DeviceMake:    "Apple",
			DeviceModel:   "iPhone16,2",
			OsName:        "iPhone",
			OsVersion:     "18.3.2.22D82",
			// HLS livestreams start rejecting tokenless reads about 30
			// seconds in.
			GvsPoTokenPolicy: map[VideoStreamingProtocol]GvsPoTokenPolicy{
				StreamingProtocolHTTPS: {Required: true, Recommended: true, NotRequiredWithPlayerToken: true},
				StreamingProtocolHLS:   {Required: true, Recommended: true, NotRequiredWithPlayerToken: true},
			},
			PlayerPoTokenPolicy: PlayerPoTokenPolicy{Recommended: true},
		},
		ClientMWeb: {
			Name:             "MWEB",
			Version:          "2.20250925.01.00",
			Host:             defaultHost,
			ContextNameID:    2,
			UserAgent:        "Mozilla/5.0 (iPad; CPU OS 16_7_10 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1,gzip(gfe)",
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			GvsPoTokenPolicy: webGvsPolicies(),
		},
		ClientTV: {
			Name:                   "TVHTML5",
			Version:                "7.20250923.13.00",
			Host:                   defaultHost,
			ContextNameID:          7,
			UserAgent:              "Mozilla/5.0 (ChromiumStylePlatform) Cobalt/Version",
			AuthenticatedUserAgent: "Mozilla/5.0 (ChromiumStylePlatform) Cobalt/25.lts.30.1034943-gold (unlike Gecko), Unknown_TV_Unknown_0/Unknown (Unknown, Unknown)",
			SupportsCookies:        true,
			RequireJSPlayer:        true,
			GvsPoTokenPolicy:       webGvsPolicies(),
		},
		ClientTVSimply: {
			Name:            "TVHTML5_SIMPLY",
			Version:         "1.0",
			Host:            defaultHost,
			ContextNameID:   75,
			RequireJSPlayer: true,
			GvsPoTokenPolicy: map[VideoStreamingProtocol]GvsPoTokenPolicy{
				StreamingProtocolHTTPS: {Required: true, Recommended: true},
				StreamingProtocolDASH:  {Required: true, Recommended: true},
				StreamingProtocolHLS:   {Recommended: true},
			},
		},
		ClientTVEmbedded: {
			Name:             "TVHTML5_SIMPLY_EMBEDDED_PLAYER",
			Version:          "2.0",
			Host:             defaultHost,
			ContextNameID:    85,
			SupportsCookies:  true,
			RequireJSPlayer:  true,
			RequireAuth:      true,
			GvsPoTokenPolicy: defaultGvsPolicies(),
		},
	}

	for id, profile := range table {
		profile.ID = id
		profile.Priority = id.Priority()
		if id.IsEmbedded() {
			profile.EmbedURL = defaultEmbedURL
		}
		table[id] = profile
	}
	return table
}
